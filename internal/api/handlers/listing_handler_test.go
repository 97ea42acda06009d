package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtorspace/realtor-space/internal/api/handlers"
	"github.com/realtorspace/realtor-space/internal/api/loaders"
	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

type listingsResponse struct {
	Properties []entities.Property `json:"properties"`
	Missing    []string            `json:"missing"`
	Count      int                 `json:"count"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func propertyIDs(properties []entities.Property) []string {
	out := make([]string, 0, len(properties))
	for _, p := range properties {
		out = append(out, p.ID)
	}
	return out
}

func TestListingHandler_ListAppliesFilters(t *testing.T) {
	h := handlers.NewListingHandler(services.NewListingService(newBackend(), 20))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/listings?county=47&price=10000-30000", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[listingsResponse](t, rec)
	assert.Equal(t, []string{"p1", "p2"}, propertyIDs(body.Properties))
	assert.Equal(t, 2, body.Count)
}

func TestListingHandler_ListRejectsBadFilters(t *testing.T) {
	h := handlers.NewListingHandler(services.NewListingService(newBackend(), 20))

	for _, query := range []string{"sub_county=301", "county=abc", "price=cheap", "page=-1"} {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/api/listings?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestListingHandler_ListBackendDown(t *testing.T) {
	api := newBackend()
	api.fetchErr = apperrors.NewNetworkError("request failed", nil)
	h := handlers.NewListingHandler(services.NewListingService(api, 20))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/listings", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Network error")
}

func TestListingHandler_Featured(t *testing.T) {
	h := handlers.NewListingHandler(services.NewListingService(newBackend(), 20))

	rec := httptest.NewRecorder()
	h.Featured(rec, httptest.NewRequest(http.MethodGet, "/api/listings/featured", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"p1", "p2", "p3"}, propertyIDs(decode[listingsResponse](t, rec).Properties))
}

func TestListingHandler_GetThroughLoader(t *testing.T) {
	api := newBackend()
	h := handlers.NewListingHandler(services.NewListingService(api, 20))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/listings/{id}", h.Get)
	srv := loaders.Middleware(api)(mux)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listings/p3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Property entities.Property `json:"property"`
	}](t, rec)
	assert.Equal(t, "Nyali villa", body.Property.Title)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listings/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListingHandler_Batch(t *testing.T) {
	api := newBackend()
	h := handlers.NewListingHandler(services.NewListingService(api, 20))

	rec := httptest.NewRecorder()
	h.Batch(rec, httptest.NewRequest(http.MethodGet, "/api/listings/batch?ids=p2,nope,p2,p4", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[listingsResponse](t, rec)
	assert.Equal(t, []string{"p2", "p4"}, propertyIDs(body.Properties))
	assert.Equal(t, []string{"nope"}, body.Missing)
	assert.ElementsMatch(t, []string{"FetchProperty:p2", "FetchProperty:nope", "FetchProperty:p4"}, api.Calls())

	rec = httptest.NewRecorder()
	h.Batch(rec, httptest.NewRequest(http.MethodGet, "/api/listings/batch", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListingHandler_PriceRanges(t *testing.T) {
	h := handlers.NewListingHandler(services.NewListingService(newBackend(), 20))

	rec := httptest.NewRecorder()
	h.PriceRanges(rec, httptest.NewRequest(http.MethodGet, "/api/price-ranges", nil))

	body := decode[struct {
		PriceRanges []entities.PriceBracket `json:"price_ranges"`
	}](t, rec)
	require.Len(t, body.PriceRanges, len(entities.PriceBrackets))
	assert.Equal(t, "0-10000", body.PriceRanges[0].Key)
	assert.True(t, body.PriceRanges[len(body.PriceRanges)-1].Open)
}

func TestLocationHandler_Counties(t *testing.T) {
	h := handlers.NewLocationHandler(services.NewListingService(newBackend(), 20))

	rec := httptest.NewRecorder()
	h.Counties(rec, httptest.NewRequest(http.MethodGet, "/api/counties", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Counties []entities.County `json:"counties"`
	}](t, rec)
	assert.Len(t, body.Counties, 2)
}

func TestLocationHandler_SubCounties(t *testing.T) {
	api := newBackend()
	h := handlers.NewLocationHandler(services.NewListingService(api, 20))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/counties/{id}/sub-counties", h.SubCounties)
	srv := loaders.Middleware(api)(mux)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/counties/47/sub-counties", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		CountyID    int                  `json:"county_id"`
		SubCounties []entities.SubCounty `json:"sub_counties"`
	}](t, rec)
	assert.Equal(t, 47, body.CountyID)
	assert.Len(t, body.SubCounties, 3)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/counties/1/sub-counties", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"county_id":1,"sub_counties":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/counties/x/sub-counties", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocationHandler_BatchSubCounties(t *testing.T) {
	api := newBackend()
	h := handlers.NewLocationHandler(services.NewListingService(api, 20))

	rec := httptest.NewRecorder()
	h.BatchSubCounties(rec, httptest.NewRequest(http.MethodGet, "/api/sub-counties?county_ids=47,1,47", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		SubCounties map[string][]entities.SubCounty `json:"sub_counties"`
	}](t, rec)
	assert.Len(t, body.SubCounties["47"], 3)
	assert.Empty(t, body.SubCounties["1"])
	assert.Len(t, api.Calls(), 2)

	rec = httptest.NewRecorder()
	h.BatchSubCounties(rec, httptest.NewRequest(http.MethodGet, "/api/sub-counties?county_ids=47,zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
