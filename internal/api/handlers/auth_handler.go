package handlers

import (
	"net/http"

	"github.com/realtorspace/realtor-space/internal/api/middleware"
	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

// AuthHandler handles login, registration and password resets. The session
// it starts or ends is the one attached by the session middleware.
type AuthHandler struct {
	api providers.AuthAPI
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(api providers.AuthAPI) *AuthHandler {
	return &AuthHandler{api: api}
}

type sessionResponse struct {
	Authenticated bool           `json:"authenticated"`
	User          *entities.User `json:"user,omitempty"`
	IsAgent       bool           `json:"is_agent"`
	IsAdmin       bool           `json:"is_admin"`
}

func newSessionResponse(gate services.SessionGate) sessionResponse {
	session, ok := gate.Current()
	if !ok {
		return sessionResponse{}
	}
	user := session.User
	return sessionResponse{
		Authenticated: true,
		User:          &user,
		IsAgent:       gate.IsAgent(),
		IsAdmin:       gate.IsAdmin(),
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}
	var req entities.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := middleware.RotateSession(r.Context()); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if _, err := services.NewAuthService(h.api, store).Login(r.Context(), req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionResponse(store))
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}
	var req entities.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := middleware.RotateSession(r.Context()); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if _, err := services.NewAuthService(h.api, store).Register(r.Context(), req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newSessionResponse(store))
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}
	if err := services.NewAuthService(h.api, store).Logout(r.Context()); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionResponse(store))
}

// Session handles GET /api/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionResponse(store))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := services.NewAuthService(h.api, store).RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists for that email, a reset link has been sent.",
	})
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := services.NewAuthService(h.api, store).ConfirmPasswordReset(r.Context(), entities.PasswordResetRequest{
		Token:           req.Token,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset. You can now log in."})
}
