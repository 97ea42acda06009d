package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
)

// SessionStorageFactory hands out the storage of one browser session
type SessionStorageFactory interface {
	Storage(sessionID string) providers.SessionStorage
}

type sessionKey struct{}

// sessionHandle is what the middleware attaches to a request. rotate is nil
// for sessions that are not bound to a cookie.
type sessionHandle struct {
	store  *services.SessionStore
	rotate func(ctx context.Context) error
}

// SessionConfig holds the session cookie settings
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SessionMiddleware restores the session named by the session cookie and
// exposes it to handlers through SessionFromContext. Browsers without a
// cookie get a fresh session id.
func SessionMiddleware(factory SessionStorageFactory, cfg SessionConfig, metrics *observability.Metrics) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "rs_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					sessionID = cookie.Value
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				setSessionCookie(w, cfg, sessionID)
			}

			store := services.NewSessionStore(factory.Storage(sessionID), metrics)
			if err := store.Restore(r.Context()); err != nil {
				observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("failed to restore session")
			}

			handle := &sessionHandle{store: store}
			handle.rotate = func(ctx context.Context) error {
				fresh := uuid.NewString()
				if err := store.Rebind(ctx, factory.Storage(fresh)); err != nil {
					return err
				}
				setSessionCookie(w, cfg, fresh)
				return nil
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, handle)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setSessionCookie(w http.ResponseWriter, cfg SessionConfig, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionFromContext returns the session store of the request, or nil
func SessionFromContext(ctx context.Context) *services.SessionStore {
	if handle, ok := ctx.Value(sessionKey{}).(*sessionHandle); ok {
		return handle.store
	}
	return nil
}

// WithSession attaches a session store that is not bound to a cookie to ctx
func WithSession(ctx context.Context, store *services.SessionStore) context.Context {
	return context.WithValue(ctx, sessionKey{}, &sessionHandle{store: store})
}

// RotateSession moves the request's session to a new id, clears the old id
// and sends the new cookie. Sessions attached with WithSession have no
// cookie and are left as they are.
func RotateSession(ctx context.Context) error {
	handle, ok := ctx.Value(sessionKey{}).(*sessionHandle)
	if !ok || handle.rotate == nil {
		return nil
	}
	return handle.rotate(ctx)
}

// RequireAgent lets only agent sessions through
func RequireAgent(next http.Handler) http.Handler {
	return requireRole(next, services.SessionGate.IsAgent)
}

// RequireAdmin lets only admin sessions through
func RequireAdmin(next http.Handler) http.Handler {
	return requireRole(next, services.SessionGate.IsAdmin)
}

func requireRole(next http.Handler, allowed func(services.SessionGate) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := SessionFromContext(r.Context())
		if store == nil || !store.IsAuthenticated() {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    "authentication required",
				"redirect": "/login",
			})
			return
		}
		if !allowed(store) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// InvalidateSession drops the session of the request behind ctx. It is
// installed as the backend client's unauthorized hook.
func InvalidateSession(ctx context.Context) {
	if store := SessionFromContext(ctx); store != nil {
		store.Invalidate(ctx, "backend_unauthorized")
	}
}
