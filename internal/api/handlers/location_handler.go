package handlers

import (
	"net/http"
	"strconv"

	"github.com/realtorspace/realtor-space/internal/api/loaders"
	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
)

const maxBatchCounties = 50

// LocationHandler serves the county hierarchy behind the cascading selectors
type LocationHandler struct {
	listings *services.ListingService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(listings *services.ListingService) *LocationHandler {
	return &LocationHandler{listings: listings}
}

// Counties handles GET /api/counties
func (h *LocationHandler) Counties(w http.ResponseWriter, r *http.Request) {
	counties, err := h.listings.Counties(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"counties": counties})
}

// SubCounties handles GET /api/counties/{id}/sub-counties
func (h *LocationHandler) SubCounties(w http.ResponseWriter, r *http.Request) {
	countyID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || countyID <= 0 {
		respondWithError(w, http.StatusBadRequest, "invalid county id")
		return
	}

	var subCounties []entities.SubCounty
	if l := loaders.For(r.Context()); l != nil {
		subCounties, err = l.SubCountyLoader.Load(r.Context(), countyID)()
	} else {
		subCounties, err = h.listings.SubCounties(r.Context(), countyID)
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if subCounties == nil {
		subCounties = []entities.SubCounty{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"county_id":    countyID,
		"sub_counties": subCounties,
	})
}

// BatchSubCounties handles GET /api/sub-counties?county_ids=1,2
func (h *LocationHandler) BatchSubCounties(w http.ResponseWriter, r *http.Request) {
	raw := splitList(r.URL.Query().Get("county_ids"))
	if len(raw) == 0 {
		respondWithError(w, http.StatusBadRequest, "county_ids is required")
		return
	}
	if len(raw) > maxBatchCounties {
		respondWithError(w, http.StatusBadRequest, "too many county ids")
		return
	}
	ids := make([]int, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid county id: "+v)
			return
		}
		ids = append(ids, id)
	}

	l := loaders.For(r.Context())
	if l == nil {
		l = loaders.NewLoaders(h.listings.API())
	}
	results, errs := l.SubCountyLoader.LoadMany(r.Context(), ids)()

	byCounty := make(map[string][]entities.SubCounty, len(ids))
	for i, id := range ids {
		if errs != nil && errs[i] != nil {
			respondWithAppError(w, r, errs[i])
			return
		}
		options := results[i]
		if options == nil {
			options = []entities.SubCounty{}
		}
		byCounty[strconv.Itoa(id)] = options
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"sub_counties": byCounty})
}
