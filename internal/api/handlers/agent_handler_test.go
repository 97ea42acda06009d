package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtorspace/realtor-space/internal/api/handlers"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
)

const validPropertyJSON = `{
	"title": "Westlands flat",
	"description": "Two bedroom flat",
	"property_type": "apartment",
	"bedrooms": 2,
	"bathrooms": 1,
	"square_meters": 80,
	"rent_amount": 30000,
	"county_id": 47,
	"sub_county_id": 302,
	"location_details": "Westlands",
	"is_available": true
}`

func TestAgentHandler_CreateProperty(t *testing.T) {
	api := newBackend()
	var changed []string
	h := handlers.NewAgentHandler(api, api, func(ctx context.Context, eventType entities.ListingEventType, id string) {
		changed = append(changed, string(eventType)+":"+id)
	})

	rec := httptest.NewRecorder()
	h.CreateProperty(rec, withSession(post("/api/agent/properties", validPropertyJSON), newSession(t, entities.UserTypeAgent)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Westlands flat", api.created.Title)
	assert.Equal(t, "tok-1", api.lastToken)
	assert.Equal(t, []string{"listing_created:new-1"}, changed)
}

func TestAgentHandler_CreatePropertyValidation(t *testing.T) {
	api := newBackend()
	h := handlers.NewAgentHandler(api, api, nil)

	rec := httptest.NewRecorder()
	h.CreateProperty(rec, withSession(post("/api/agent/properties", `{"title":"","rent_amount":0,"county_id":47}`), newSession(t, entities.UserTypeAgent)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, rec)
	assert.Equal(t, "Title is required", body.Fields["title"])
	assert.Equal(t, "Valid rent amount is required", body.Fields["rent_amount"])
	assert.Nil(t, api.created)
}

func TestAgentHandler_RoleGate(t *testing.T) {
	api := newBackend()
	h := handlers.NewAgentHandler(api, api, nil)

	rec := httptest.NewRecorder()
	h.MyProperties(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/agent/properties", nil), newSession(t, "")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/login"`)

	rec = httptest.NewRecorder()
	h.MyProperties(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/agent/properties", nil), newSession(t, entities.UserTypeClient)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Empty(t, api.Calls())
}

func TestAgentHandler_UpdateAndDelete(t *testing.T) {
	api := newBackend()
	var changed []string
	h := handlers.NewAgentHandler(api, api, func(ctx context.Context, eventType entities.ListingEventType, id string) {
		changed = append(changed, string(eventType)+":"+id)
	})
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/agent/properties/{id}", h.UpdateProperty)
	mux.HandleFunc("DELETE /api/agent/properties/{id}", h.DeleteProperty)
	store := newSession(t, entities.UserTypeAgent)

	req := httptest.NewRequest(http.MethodPut, "/api/agent/properties/p2", bytes.NewBufferString(validPropertyJSON))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, withSession(req, store))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodDelete, "/api/agent/properties/p2", nil), store))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"listing_updated:p2", "listing_deleted:p2"}, changed)
}

type uploadFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, path string, existing string, files []uploadFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if existing != "" {
		require.NoError(t, mw.WriteField("existing", existing))
	}
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="images"; filename="`+f.name+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAgentHandler_UploadImages(t *testing.T) {
	api := newBackend()
	h := handlers.NewAgentHandler(api, api, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/agent/properties/{id}/images", h.UploadImages)

	req := multipartRequest(t, "/api/agent/properties/p2/images", "2", []uploadFile{
		{name: "front.jpg", contentType: "image/jpeg", data: []byte("jpeg-bytes")},
		{name: "notes.pdf", contentType: "application/pdf", data: []byte("pdf-bytes")},
	})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, withSession(req, newSession(t, entities.UserTypeAgent)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Images   []entities.PropertyImage `json:"images"`
		Rejected []string                 `json:"rejected"`
	}](t, rec)
	assert.Len(t, body.Images, 1)
	assert.Equal(t, []string{"notes.pdf"}, body.Rejected)
	require.Len(t, api.uploaded, 1)
	assert.Equal(t, "front.jpg", api.uploaded[0].Filename)
}

func TestAgentHandler_UploadImagesOverLimit(t *testing.T) {
	api := newBackend()
	h := handlers.NewAgentHandler(api, api, nil)

	req := multipartRequest(t, "/api/agent/properties/p2/images", "10", []uploadFile{
		{name: "front.jpg", contentType: "image/jpeg", data: []byte("jpeg-bytes")},
	})
	rec := httptest.NewRecorder()
	h.UploadImages(rec, withSession(req, newSession(t, entities.UserTypeAgent)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "up to 10 images")
	assert.Nil(t, api.uploaded)
}

func TestAgentHandler_UploadImagesRequiresFiles(t *testing.T) {
	api := newBackend()
	h := handlers.NewAgentHandler(api, api, nil)

	rec := httptest.NewRecorder()
	h.UploadImages(rec, withSession(multipartRequest(t, "/api/agent/properties/p2/images", "", nil), newSession(t, entities.UserTypeAgent)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
