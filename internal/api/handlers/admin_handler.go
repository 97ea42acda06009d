package handlers

import (
	"net/http"

	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

// AdminHandler serves agent moderation
type AdminHandler struct {
	api providers.AdminAPI
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(api providers.AdminAPI) *AdminHandler {
	return &AdminHandler{api: api}
}

func (h *AdminHandler) service(w http.ResponseWriter, r *http.Request) (*services.AdminService, bool) {
	store, ok := sessionStore(w, r)
	if !ok {
		return nil, false
	}
	return services.NewAdminService(h.api, store), true
}

// PendingAgents handles GET /api/admin/pending-agents
func (h *AdminHandler) PendingAgents(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	agents, err := svc.PendingAgents(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"agents": agents})
}

// Agents handles GET /api/admin/agents
func (h *AdminHandler) Agents(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	agents, err := svc.Agents(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"agents": agents})
}

// ApproveAgent handles POST /api/admin/approve-agent/{id}
func (h *AdminHandler) ApproveAgent(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	message, err := svc.ApproveAgent(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}
