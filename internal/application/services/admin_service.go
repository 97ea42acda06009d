package services

import (
	"context"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

// AdminService moderates agent accounts
type AdminService struct {
	api  providers.AdminAPI
	gate SessionGate
}

// NewAdminService creates a new admin service
func NewAdminService(api providers.AdminAPI, gate SessionGate) *AdminService {
	return &AdminService{api: api, gate: gate}
}

// PendingAgents lists agents waiting for approval
func (s *AdminService) PendingAgents(ctx context.Context) ([]entities.User, error) {
	token, err := requireRole(s.gate, entities.UserTypeAdmin)
	if err != nil {
		return nil, err
	}
	return s.api.PendingAgents(ctx, token)
}

// Agents lists every agent
func (s *AdminService) Agents(ctx context.Context) ([]entities.User, error) {
	token, err := requireRole(s.gate, entities.UserTypeAdmin)
	if err != nil {
		return nil, err
	}
	return s.api.Agents(ctx, token)
}

// ApproveAgent approves a pending agent
func (s *AdminService) ApproveAgent(ctx context.Context, agentID string) (string, error) {
	token, err := requireRole(s.gate, entities.UserTypeAdmin)
	if err != nil {
		return "", err
	}
	return s.api.ApproveAgent(ctx, agentID, token)
}
