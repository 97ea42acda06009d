package services

import (
	"context"
	"strings"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

// AuthService handles login, registration and password resets
type AuthService struct {
	api   providers.AuthAPI
	store *SessionStore
}

// NewAuthService creates a new auth service
func NewAuthService(api providers.AuthAPI, store *SessionStore) *AuthService {
	return &AuthService{
		api:   api,
		store: store,
	}
}

// Login authenticates and stores the resulting session
func (s *AuthService) Login(ctx context.Context, req entities.LoginRequest) (*entities.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := ValidateLogin(req); err != nil {
		return nil, err
	}

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, resp)
}

// Register creates an account and stores the resulting session
func (s *AuthService) Register(ctx context.Context, req entities.RegisterRequest) (*entities.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, resp)
}

// Logout notifies the backend, best effort, and clears the session
func (s *AuthService) Logout(ctx context.Context) error {
	if token := s.store.Token(); token != "" {
		if err := s.api.Logout(ctx, token); err != nil && !apperrors.IsUnauthorized(err) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("backend logout failed")
		}
	}
	return s.store.Logout(ctx)
}

// RefreshProfile re-reads the current user from the backend
func (s *AuthService) RefreshProfile(ctx context.Context) (*entities.User, error) {
	token := s.store.Token()
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}
	user, err := s.api.FetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateUser(ctx, *user); err != nil {
		return nil, apperrors.NewInternalError("failed to store profile", err)
	}
	return user, nil
}

// RequestPasswordReset asks for a reset email
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return s.api.RequestPasswordReset(ctx, email)
}

// ConfirmPasswordReset sets a new password
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, req entities.PasswordResetRequest) error {
	if err := ValidatePasswordReset(req); err != nil {
		return err
	}
	return s.api.ConfirmPasswordReset(ctx, strings.TrimSpace(req.Token), req.Password)
}

func (s *AuthService) startSession(ctx context.Context, resp *entities.AuthResponse) (*entities.Session, error) {
	if err := s.store.Login(ctx, *resp.User, resp.Token); err != nil {
		return nil, apperrors.NewInternalError("failed to store session", err)
	}
	return &entities.Session{Token: resp.Token, User: *resp.User}, nil
}
