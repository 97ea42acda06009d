package routes

import (
	"net/http"

	"github.com/realtorspace/realtor-space/internal/api/handlers"
	"github.com/realtorspace/realtor-space/internal/api/loaders"
	"github.com/realtorspace/realtor-space/internal/api/middleware"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
)

// Config holds the handlers and infrastructure behind the router
type Config struct {
	Listings *handlers.ListingHandler
	Location *handlers.LocationHandler
	Auth     *handlers.AuthHandler
	Agent    *handlers.AgentHandler
	Admin    *handlers.AdminHandler
	Search   *handlers.SearchHandler

	// ListingAPI backs the per-request dataloaders
	ListingAPI providers.ListingAPI

	Sessions       middleware.SessionStorageFactory
	Session        middleware.SessionConfig
	ResponseCache  *middleware.ResponseCache
	AllowedOrigins []string
	Metrics        *observability.Metrics
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux
	cfg Config
}

// NewRouter creates a new router
func NewRouter(cfg Config) *Router {
	return &Router{mux: http.NewServeMux(), cfg: cfg}
}

func (r *Router) handle(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, middleware.Route(h))
}

func (r *Router) handleAgent(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, middleware.Route(middleware.RequireAgent(h)))
}

func (r *Router) handleAdmin(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, middleware.Route(middleware.RequireAdmin(h)))
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.handle("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Listing endpoints
	r.handle("GET /api/listings", r.cfg.Listings.List)
	r.handle("GET /api/listings/featured", r.cfg.Listings.Featured)
	r.handle("GET /api/listings/batch", r.cfg.Listings.Batch)
	r.handle("GET /api/listings/{id}", r.cfg.Listings.Get)
	r.handle("GET /api/price-ranges", r.cfg.Listings.PriceRanges)

	// Location endpoints
	r.handle("GET /api/counties", r.cfg.Location.Counties)
	r.handle("GET /api/counties/{id}/sub-counties", r.cfg.Location.SubCounties)
	r.handle("GET /api/sub-counties", r.cfg.Location.BatchSubCounties)

	r.handle("GET /api/search/suggest", r.cfg.Search.Suggest)

	// Account endpoints
	r.handle("POST /api/login", r.cfg.Auth.Login)
	r.handle("POST /api/register", r.cfg.Auth.Register)
	r.handle("POST /api/logout", r.cfg.Auth.Logout)
	r.handle("GET /api/session", r.cfg.Auth.Session)
	r.handle("POST /api/auth/forgot-password", r.cfg.Auth.ForgotPassword)
	r.handle("POST /api/auth/reset-password", r.cfg.Auth.ResetPassword)

	// Agent dashboard
	r.handleAgent("GET /api/agent/properties", r.cfg.Agent.MyProperties)
	r.handleAgent("POST /api/agent/properties", r.cfg.Agent.CreateProperty)
	r.handleAgent("PUT /api/agent/properties/{id}", r.cfg.Agent.UpdateProperty)
	r.handleAgent("DELETE /api/agent/properties/{id}", r.cfg.Agent.DeleteProperty)
	r.handleAgent("POST /api/agent/properties/{id}/images", r.cfg.Agent.UploadImages)

	// Admin dashboard
	r.handleAdmin("GET /api/admin/pending-agents", r.cfg.Admin.PendingAgents)
	r.handleAdmin("GET /api/admin/agents", r.cfg.Admin.Agents)
	r.handleAdmin("POST /api/admin/approve-agent/{id}", r.cfg.Admin.ApproveAgent)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	if r.cfg.ResponseCache != nil {
		handler = r.cfg.ResponseCache.Middleware(handler)
	}
	if r.cfg.ListingAPI != nil {
		handler = loaders.Middleware(r.cfg.ListingAPI)(handler)
	}
	handler = middleware.SessionMiddleware(r.cfg.Sessions, r.cfg.Session, r.cfg.Metrics)(handler)
	handler = middleware.ObservabilityMiddleware(r.cfg.Metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)

	// CORS wraps everything so preflights and cache hits get headers too
	handler = middleware.CORSMiddleware(r.cfg.AllowedOrigins)(handler)

	return handler
}
