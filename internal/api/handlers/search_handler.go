package handlers

import (
	"net/http"
	"strconv"

	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
)

const maxSuggestions = 20

// SearchHandler serves free-text suggestions from the listing index
type SearchHandler struct {
	index providers.ListingSearchIndex
}

// NewSearchHandler creates a new search handler. A nil index answers 503.
func NewSearchHandler(index providers.ListingSearchIndex) *SearchHandler {
	return &SearchHandler{index: index}
}

// Suggest handles GET /api/search/suggest?q=&limit=
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		respondWithError(w, http.StatusServiceUnavailable, "search is not available")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = min(n, maxSuggestions)
	}

	suggestions, err := h.index.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("listing suggestions failed")
		respondWithError(w, http.StatusBadGateway, "search failed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}
