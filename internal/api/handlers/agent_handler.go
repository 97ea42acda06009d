package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

const (
	imagesField       = "images"
	multipartMemory   = 32 << 20
	maxUploadBodySize = services.MaxImages*(services.MaxImageBytes+1) + 1<<20
)

// ListingChangeFunc is called after an agent changed a listing
type ListingChangeFunc func(ctx context.Context, eventType entities.ListingEventType, propertyID string)

// AgentHandler serves the agent dashboard
type AgentHandler struct {
	api      providers.AgentAPI
	listings providers.ListingAPI
	onChange ListingChangeFunc
}

// NewAgentHandler creates a new agent handler. onChange may be nil.
func NewAgentHandler(api providers.AgentAPI, listings providers.ListingAPI, onChange ListingChangeFunc) *AgentHandler {
	return &AgentHandler{api: api, listings: listings, onChange: onChange}
}

func (h *AgentHandler) service(w http.ResponseWriter, r *http.Request) (*services.AgentService, bool) {
	store, ok := sessionStore(w, r)
	if !ok {
		return nil, false
	}
	return services.NewAgentService(h.api, h.listings, store), true
}

func (h *AgentHandler) changed(ctx context.Context, eventType entities.ListingEventType, id string) {
	if h.onChange != nil && id != "" {
		h.onChange(ctx, eventType, id)
	}
}

// MyProperties handles GET /api/agent/properties
func (h *AgentHandler) MyProperties(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	properties, err := svc.MyProperties(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"properties": properties})
}

// CreateProperty handles POST /api/agent/properties
func (h *AgentHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	var input entities.PropertyInput
	if !decodeJSON(w, r, &input) {
		return
	}

	property, err := svc.CreateProperty(r.Context(), &input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.changed(r.Context(), entities.ListingCreated, property.ID)
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"property": property})
}

// UpdateProperty handles PUT /api/agent/properties/{id}
func (h *AgentHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	var input entities.PropertyInput
	if !decodeJSON(w, r, &input) {
		return
	}

	property, err := svc.UpdateProperty(r.Context(), id, &input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.changed(r.Context(), entities.ListingUpdated, id)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"property": property})
}

// DeleteProperty handles DELETE /api/agent/properties/{id}
func (h *AgentHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := svc.DeleteProperty(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.changed(r.Context(), entities.ListingDeleted, id)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Property deleted"})
}

// UploadImages handles POST /api/agent/properties/{id}/images. The form
// carries the files under "images" and the number of images the listing
// already has under "existing".
func (h *AgentHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	existing := 0
	if raw := r.FormValue("existing"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "existing must be a non-negative number")
			return
		}
		existing = n
	}

	headers := r.MultipartForm.File[imagesField]
	if len(headers) == 0 {
		respondWithError(w, http.StatusBadRequest, "no images selected")
		return
	}
	files := make([]entities.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		upload, err := readUpload(fh)
		if err != nil {
			observability.LoggerFromContext(r.Context()).Warn().Err(err).Str("filename", fh.Filename).Msg("failed to read uploaded image")
			respondWithError(w, http.StatusBadRequest, "failed to read "+fh.Filename)
			return
		}
		files = append(files, upload)
	}

	images, rejected, err := svc.UploadImages(r.Context(), id, files, existing)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrorTypeValidation) {
			respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":    apperrors.UserMessage(err),
				"fields":   map[string]string{imagesField: apperrors.UserMessage(err)},
				"rejected": rejected,
			})
			return
		}
		respondWithAppError(w, r, err)
		return
	}
	h.changed(r.Context(), entities.ListingImagesChanged, id)
	if rejected == nil {
		rejected = []string{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"images":   images,
		"rejected": rejected,
	})
}

// readUpload reads at most one byte past the size limit so oversized files
// are still recognised as such by the image selection rules
func readUpload(fh *multipart.FileHeader) (entities.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return entities.ImageUpload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxImageBytes+1))
	if err != nil {
		return entities.ImageUpload{}, err
	}
	return entities.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
