package services

import (
	"context"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

// AgentService manages the listings of the logged-in agent
type AgentService struct {
	api      providers.AgentAPI
	listings providers.ListingAPI
	gate     SessionGate
}

// NewAgentService creates a new agent service. listings is used to check the
// sub-county of a submitted property and may be nil.
func NewAgentService(api providers.AgentAPI, listings providers.ListingAPI, gate SessionGate) *AgentService {
	return &AgentService{
		api:      api,
		listings: listings,
		gate:     gate,
	}
}

// MyProperties lists the agent's own properties
func (s *AgentService) MyProperties(ctx context.Context) ([]entities.Property, error) {
	token, err := requireRole(s.gate, entities.UserTypeAgent)
	if err != nil {
		return nil, err
	}
	return s.api.FetchMyProperties(ctx, token)
}

// CreateProperty validates and creates a listing
func (s *AgentService) CreateProperty(ctx context.Context, input *entities.PropertyInput) (*entities.Property, error) {
	token, err := requireRole(s.gate, entities.UserTypeAgent)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	return s.api.CreateProperty(ctx, input, token)
}

// UpdateProperty validates and updates a listing
func (s *AgentService) UpdateProperty(ctx context.Context, id string, input *entities.PropertyInput) (*entities.Property, error) {
	token, err := requireRole(s.gate, entities.UserTypeAgent)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	return s.api.UpdateProperty(ctx, id, input, token)
}

// DeleteProperty removes a listing
func (s *AgentService) DeleteProperty(ctx context.Context, id string) error {
	token, err := requireRole(s.gate, entities.UserTypeAgent)
	if err != nil {
		return err
	}
	return s.api.DeleteProperty(ctx, id, token)
}

// UploadImages uploads the acceptable files among files. existing is the
// number of images the property already has. The names of dropped files are
// returned alongside the stored images.
func (s *AgentService) UploadImages(ctx context.Context, id string, files []entities.ImageUpload, existing int) ([]entities.PropertyImage, []string, error) {
	token, err := requireRole(s.gate, entities.UserTypeAgent)
	if err != nil {
		return nil, nil, err
	}
	accepted, rejected, err := SelectImages(files, existing)
	if err != nil {
		return nil, rejected, err
	}
	images, err := s.api.UploadImages(ctx, id, accepted, token)
	return images, rejected, err
}

func (s *AgentService) validate(ctx context.Context, input *entities.PropertyInput) error {
	var subCounties []entities.SubCounty
	if input.SubCountyID != nil && input.CountyID > 0 && s.listings != nil {
		options, err := s.listings.FetchSubCounties(ctx, input.CountyID)
		if err == nil {
			subCounties = options
		}
	}
	return ValidatePropertyInput(input, subCounties)
}

// requireRole returns the session token when gate holds a session of role
func requireRole(gate SessionGate, role entities.UserType) (string, error) {
	session, ok := gate.Current()
	if !ok {
		return "", apperrors.NewUnauthorizedError("authentication required")
	}
	if session.User.UserType != role {
		return "", apperrors.NewForbiddenError("this action requires an " + string(role) + " account")
	}
	return session.Token, nil
}
