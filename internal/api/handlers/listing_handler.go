package handlers

import (
	"net/http"

	"github.com/realtorspace/realtor-space/internal/api/loaders"
	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

const maxBatchIDs = 50

// ListingHandler serves the public listing pages
type ListingHandler struct {
	listings *services.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listings *services.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// List handles GET /api/listings
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	state, err := entities.ParseFilterState(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, ok := queryInt(r, "page")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "page must be a positive number")
		return
	}
	limit, ok := queryInt(r, "limit")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "limit must be a positive number")
		return
	}

	properties, err := h.listings.Search(r.Context(), state, page, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"properties": properties,
		"count":      len(properties),
		"filters":    state.Query(),
	})
}

// Featured handles GET /api/listings/featured
func (h *ListingHandler) Featured(w http.ResponseWriter, r *http.Request) {
	properties, err := h.listings.Featured(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"properties": properties})
}

// Get handles GET /api/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "property id is required")
		return
	}

	var (
		property *entities.Property
		err      error
	)
	if l := loaders.For(r.Context()); l != nil {
		property, err = l.PropertyLoader.Load(r.Context(), id)()
	} else {
		property, err = h.listings.Property(r.Context(), id)
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"property": property})
}

// Batch handles GET /api/listings/batch?ids=a,b. Ids the backend does not
// know are reported under "missing".
func (h *ListingHandler) Batch(w http.ResponseWriter, r *http.Request) {
	ids := splitList(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		respondWithError(w, http.StatusBadRequest, "ids is required")
		return
	}
	if len(ids) > maxBatchIDs {
		respondWithError(w, http.StatusBadRequest, "too many ids")
		return
	}

	l := loaders.For(r.Context())
	if l == nil {
		l = loaders.NewLoaders(h.listings.API())
	}
	results, errs := l.PropertyLoader.LoadMany(r.Context(), ids)()

	properties := make([]*entities.Property, 0, len(ids))
	missing := []string{}
	for i, id := range ids {
		if errs != nil && errs[i] != nil {
			if apperrors.Is(errs[i], apperrors.ErrorTypeNotFound) || apperrors.StatusOf(errs[i]) == http.StatusNotFound {
				missing = append(missing, id)
				continue
			}
			respondWithAppError(w, r, errs[i])
			return
		}
		properties = append(properties, results[i])
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"properties": properties,
		"missing":    missing,
	})
}

// PriceRanges handles GET /api/price-ranges
func (h *ListingHandler) PriceRanges(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"price_ranges": entities.PriceBrackets})
}
