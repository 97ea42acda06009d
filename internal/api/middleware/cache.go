package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
)

// CacheRule holds the cache settings of a path
type CacheRule struct {
	TTLSeconds int
	// Prefix matches every path below the rule's path
	Prefix bool
}

// ResponseCache caches successful responses of public GET routes. Responses
// that depend on the session must never be routed through it.
type ResponseCache struct {
	cache providers.CacheProvider
	rules map[string]CacheRule
}

// DefaultCacheRules covers the public catalogue routes of the website
func DefaultCacheRules() map[string]CacheRule {
	return map[string]CacheRule{
		"/api/counties":          {TTLSeconds: 3600, Prefix: true},
		"/api/price-ranges":      {TTLSeconds: 3600},
		"/api/listings/featured": {TTLSeconds: 60},
	}
}

// NewResponseCache creates a response cache. A nil cache disables it.
func NewResponseCache(cache providers.CacheProvider, rules map[string]CacheRule) *ResponseCache {
	if rules == nil {
		rules = DefaultCacheRules()
	}
	return &ResponseCache{cache: cache, rules: rules}
}

// Middleware returns the cache middleware handler
func (m *ResponseCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}
		rule, ok := m.rule(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		logger := observability.LoggerFromContext(r.Context())
		key := cacheKey(r.URL.Path, r.URL.RawQuery)

		cached, err := m.cache.Get(r.Context(), key)
		if err == nil {
			logger.Debug().Str("path", r.URL.Path).Msg("response cache hit")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}
		if !errors.Is(err, providers.ErrCacheMiss) {
			logger.Warn().Err(err).Str("path", r.URL.Path).Msg("response cache read failed")
		}

		w.Header().Set("X-Cache", "MISS")
		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(r.Context(), key, recorder.body.Bytes(), rule.TTLSeconds); err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to cache response")
			}
		}
	})
}

// Invalidate drops the cached responses of paths requested without a query
func (m *ResponseCache) Invalidate(ctx context.Context, paths ...string) {
	if m.cache == nil {
		return
	}
	for _, path := range paths {
		if err := m.cache.Delete(ctx, cacheKey(path, "")); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("path", path).Msg("failed to invalidate cached response")
		}
	}
}

func (m *ResponseCache) rule(path string) (CacheRule, bool) {
	if rule, ok := m.rules[path]; ok {
		return rule, true
	}
	for prefix, rule := range m.rules {
		if rule.Prefix && strings.HasPrefix(path, prefix+"/") {
			return rule, true
		}
	}
	return CacheRule{}, false
}

func cacheKey(path, rawQuery string) string {
	key := http.MethodGet + ":" + path
	if rawQuery != "" {
		key += "?" + rawQuery
	}
	hash := sha256.Sum256([]byte(key))
	return "http:cache:" + hex.EncodeToString(hash[:])
}

// responseRecorder copies the response body while writing it to the client
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if r.written {
		return
	}
	r.statusCode = statusCode
	r.written = true
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
