package middleware

import (
	"context"
	"net/http"
)

type routeKey struct{}

type routeHolder struct {
	pattern string
}

// withRoute makes the matched mux pattern visible to outer middleware. The
// mux sets Request.Pattern on its own copy of the request, so handlers
// registered through Route copy it back into the holder.
func withRoute(r *http.Request) (*http.Request, *routeHolder) {
	if h, ok := r.Context().Value(routeKey{}).(*routeHolder); ok {
		return r, h
	}
	h := &routeHolder{}
	return r.WithContext(context.WithValue(r.Context(), routeKey{}, h)), h
}

// Route records the pattern of the route serving the request
func Route(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := r.Context().Value(routeKey{}).(*routeHolder); ok {
			h.pattern = r.Pattern
		}
		next.ServeHTTP(w, r)
	})
}

func (h *routeHolder) route(r *http.Request) string {
	if h.pattern != "" {
		return h.pattern
	}
	return "unmatched"
}
