package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtorspace/realtor-space/internal/adapters/storage"
	"github.com/realtorspace/realtor-space/internal/api/handlers"
	"github.com/realtorspace/realtor-space/internal/api/middleware"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

type sessionBody struct {
	Authenticated bool           `json:"authenticated"`
	User          *entities.User `json:"user"`
	IsAgent       bool           `json:"is_agent"`
	IsAdmin       bool           `json:"is_admin"`
}

func post(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_Login(t *testing.T) {
	api := newBackend()
	api.loginResp = &entities.AuthResponse{Token: "tok-9", User: &entities.User{ID: "u9", UserType: entities.UserTypeAgent}}
	store := newSession(t, "")
	h := handlers.NewAuthHandler(api)

	rec := httptest.NewRecorder()
	h.Login(rec, withSession(post("/api/login", `{"email":"agent@example.com","password":"Secret123"}`), store))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[sessionBody](t, rec)
	assert.True(t, body.Authenticated)
	assert.True(t, body.IsAgent)
	assert.Equal(t, "tok-9", store.Token())
}

func TestAuthHandler_LoginValidation(t *testing.T) {
	api := newBackend()
	h := handlers.NewAuthHandler(api)

	rec := httptest.NewRecorder()
	h.Login(rec, withSession(post("/api/login", `{"email":"not-an-email","password":""}`), newSession(t, "")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, rec)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
	assert.Empty(t, api.Calls())
}

func TestAuthHandler_LoginRejected(t *testing.T) {
	api := newBackend()
	api.loginErr = apperrors.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	h := handlers.NewAuthHandler(api)

	rec := httptest.NewRecorder()
	h.Login(rec, withSession(post("/api/login", `{"email":"a@b.co","password":"wrong"}`), newSession(t, "")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
}

func TestAuthHandler_InvalidPayload(t *testing.T) {
	h := handlers.NewAuthHandler(newBackend())

	rec := httptest.NewRecorder()
	h.Login(rec, withSession(post("/api/login", `{`), newSession(t, "")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_MissingSessionMiddleware(t *testing.T) {
	h := handlers.NewAuthHandler(newBackend())

	rec := httptest.NewRecorder()
	h.Session(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthHandler_Register(t *testing.T) {
	store := newSession(t, "")
	h := handlers.NewAuthHandler(newBackend())

	rec := httptest.NewRecorder()
	h.Register(rec, withSession(post("/api/register",
		`{"first_name":"Jane","last_name":"Doe","email":"jane@example.com","password":"Secret123","user_type":"client"}`), store))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, store.IsClient())
}

func TestAuthHandler_LogoutAndSession(t *testing.T) {
	api := newBackend()
	store := newSession(t, entities.UserTypeAdmin)
	h := handlers.NewAuthHandler(api)

	rec := httptest.NewRecorder()
	h.Session(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/session", nil), store))
	assert.True(t, decode[sessionBody](t, rec).IsAdmin)

	rec = httptest.NewRecorder()
	h.Logout(rec, withSession(post("/api/logout", ""), store))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[sessionBody](t, rec).Authenticated)
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, []string{"Logout"}, api.Calls())
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	api := newBackend()
	h := handlers.NewAuthHandler(api)

	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, withSession(post("/api/auth/forgot-password", `{"email":"jane@example.com"}`), newSession(t, "")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ResetPassword(rec, withSession(post("/api/auth/reset-password",
		`{"token":"reset-1","password":"Secret123","confirm_password":"Secret124"}`), newSession(t, "")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "confirm_password")

	rec = httptest.NewRecorder()
	h.ResetPassword(rec, withSession(post("/api/auth/reset-password",
		`{"token":"reset-1","password":"Secret123","confirm_password":"Secret123"}`), newSession(t, "")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reset-1", api.resetToken)
	assert.Equal(t, "Secret123", api.resetPasswd)
}

func TestAuthHandler_LoginIssuesFreshSessionID(t *testing.T) {
	const planted = "6f1d2c3b-8a4e-4f5d-9c7b-1a2b3c4d5e6f"
	api := newBackend()
	api.loginResp = &entities.AuthResponse{Token: "tok-9", User: &entities.User{ID: "u9", UserType: entities.UserTypeClient}}
	auth := handlers.NewAuthHandler(api)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
		status  int
		token   string
	}{
		{"login", auth.Login, `{"email":"client@example.com","password":"Secret123"}`, http.StatusOK, "tok-9"},
		{"register", auth.Register, `{"first_name":"Amina","last_name":"Otieno","email":"amina@example.com","password":"Secret123","user_type":"client"}`, http.StatusCreated, "tok-new"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := storage.NewMemorySessions(time.Hour)
			cfg := middleware.SessionConfig{CookieName: "rs_session", TTL: time.Hour}
			h := middleware.SessionMiddleware(sessions, cfg, nil)(tt.handler)

			req := post("/api/auth", tt.body)
			req.AddCookie(&http.Cookie{Name: "rs_session", Value: planted})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "rs_session", cookies[0].Name)
			assert.NotEqual(t, planted, cookies[0].Value)
			assert.True(t, cookies[0].HttpOnly)

			ctx := context.Background()
			_, err := sessions.Storage(planted).Load(ctx)
			assert.ErrorIs(t, err, providers.ErrNoSession)
			stored, err := sessions.Storage(cookies[0].Value).Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.token, stored.AuthToken)
		})
	}
}
