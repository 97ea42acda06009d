package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/realtorspace/realtor-space/internal/adapters/events"
	"github.com/realtorspace/realtor-space/internal/adapters/search"
	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/infrastructure/clients/realtorapi"
	"github.com/realtorspace/realtor-space/internal/infrastructure/clients/redis"
	"github.com/realtorspace/realtor-space/internal/infrastructure/clients/typesense"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	"github.com/realtorspace/realtor-space/pkg/config"
	"github.com/realtorspace/realtor-space/pkg/secrets"
)

func main() {
	var reset bool
	var intervalFlag string
	var pageSize int
	var watch bool
	flag.BoolVar(&reset, "reset", false, "delete existing listings collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.IntVar(&pageSize, "page-size", 100, "listings fetched per backend request")
	flag.BoolVar(&watch, "watch", false, "apply listing changes published on Redis between reindex runs")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		var err error
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := secrets.ApplyToEnv(ctx, secrets.VaultConfigFromEnv("indexer")); err != nil {
		log.Warn().Err(err).Msg("failed to load secrets from vault")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("realtor-space-indexer", cfg.App.Env)

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Typesense")
	}
	index := search.NewTypesenseListingIndex(tsClient)
	listings := services.NewListingService(realtorapi.NewClient(cfg.API.BaseURL, realtorapi.WithTimeout(cfg.API.Timeout)), pageSize)
	indexer := services.NewIndexSyncService(listings, index)

	if watch {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisClient.Close()
		bus := events.NewRedisEventBus(redisClient)
		defer bus.Close()

		go func() {
			if err := indexer.Watch(ctx, bus); err != nil {
				log.Error().Err(err).Msg("listing change watcher stopped")
			}
		}()
	}

	reset = reset || os.Getenv("RESET_TYPESENSE") == "true"
	for {
		if err := indexer.Reindex(ctx, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 && !watch {
			break
		}

		reset = false
		var next <-chan time.Time
		if interval > 0 {
			log.Info().Dur("next_run_in", interval).Msg("reindex complete")
			next = time.After(interval)
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-next:
		}
	}
}
