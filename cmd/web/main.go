package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/realtorspace/realtor-space/internal/adapters/cache"
	"github.com/realtorspace/realtor-space/internal/adapters/events"
	"github.com/realtorspace/realtor-space/internal/adapters/search"
	"github.com/realtorspace/realtor-space/internal/adapters/storage"
	"github.com/realtorspace/realtor-space/internal/api/handlers"
	"github.com/realtorspace/realtor-space/internal/api/middleware"
	"github.com/realtorspace/realtor-space/internal/api/routes"
	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/clients/realtorapi"
	"github.com/realtorspace/realtor-space/internal/infrastructure/clients/redis"
	"github.com/realtorspace/realtor-space/internal/infrastructure/clients/typesense"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	"github.com/realtorspace/realtor-space/pkg/config"
	"github.com/realtorspace/realtor-space/pkg/secrets"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := secrets.ApplyToEnv(ctx, secrets.VaultConfigFromEnv("web")); err != nil {
		log.Warn().Err(err).Msg("failed to load secrets from vault")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(cfg.App.Name, cfg.App.Env)

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	client := realtorapi.NewClient(cfg.API.BaseURL,
		realtorapi.WithTimeout(cfg.API.Timeout),
		realtorapi.WithMetrics(metrics),
		realtorapi.WithUnauthorizedHandler(middleware.InvalidateSession),
	)

	// Sessions and caches live in Redis when it is configured and reachable
	var (
		listingAPI    providers.ListingAPI = client
		sessions      middleware.SessionStorageFactory
		responseCache *middleware.ResponseCache
		cachedAPI     *cache.CachedListingAPI
		eventBus      providers.EventBus
	)
	if cfg.Session.Backend == "redis" {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, keeping sessions in memory")
		} else {
			defer redisClient.Close()
			sessions = cache.NewRedisSessions(redisClient, cfg.Session.TTL)
			cacheProvider := cache.NewRedisAdapter(redisClient, "rs:cache:")
			cachedAPI = cache.NewCachedListingAPI(client, cacheProvider)
			listingAPI = cachedAPI
			responseCache = middleware.NewResponseCache(cacheProvider, middleware.DefaultCacheRules())
			bus := events.NewRedisEventBus(redisClient)
			defer bus.Close()
			eventBus = bus
		}
	}
	if sessions == nil {
		sessions = storage.NewMemorySessions(cfg.Session.TTL)
	}

	var index providers.ListingSearchIndex
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, search suggestions disabled")
		} else {
			listingIndex := search.NewTypesenseListingIndex(tsClient)
			if err := listingIndex.EnsureCollection(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to ensure listings collection")
			}
			index = listingIndex
		}
	}

	var invalidators []services.InvalidateFunc
	if cachedAPI != nil {
		invalidators = append(invalidators, cachedAPI.InvalidateProperty)
	}
	if responseCache != nil {
		invalidators = append(invalidators, func(ctx context.Context, _ string) {
			responseCache.Invalidate(ctx, "/api/listings/featured")
		})
	}
	invalidation := services.NewCacheInvalidationService(eventBus, invalidators...)
	if err := invalidation.Start(ctx); err != nil {
		log.Warn().Err(err).Msg("cross-instance cache invalidation disabled")
		invalidation = services.NewCacheInvalidationService(nil, invalidators...)
	}
	defer invalidation.Stop()

	if cachedAPI != nil && cfg.Cache.WarmEnabled {
		go services.NewCacheWarmingService(cachedAPI).StartPeriodicWarming(ctx, cfg.Cache.WarmInterval)
	}

	listings := services.NewListingService(listingAPI, services.DefaultPageSize)
	router := routes.NewRouter(routes.Config{
		Listings:   handlers.NewListingHandler(listings),
		Location:   handlers.NewLocationHandler(listings),
		Auth:       handlers.NewAuthHandler(client),
		Agent:      handlers.NewAgentHandler(client, listingAPI, invalidation.ListingChanged),
		Admin:      handlers.NewAdminHandler(client),
		Search:     handlers.NewSearchHandler(index),
		ListingAPI: listingAPI,
		Sessions:   sessions,
		Session: middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.App.Env == "production",
		},
		ResponseCache:  responseCache,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("backend", cfg.API.BaseURL).Msg("listing website starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	log.Info().Msg("server stopped")
}
