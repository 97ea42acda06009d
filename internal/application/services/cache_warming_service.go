package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
)

// WarmResult counts what one warming pass loaded
type WarmResult struct {
	Counties    int
	SubCounties int
	Properties  int
}

// CacheWarmingService preloads the location hierarchy and the featured
// listings into a caching ListingAPI by reading through it
type CacheWarmingService struct {
	api providers.ListingAPI
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(api providers.ListingAPI) *CacheWarmingService {
	return &CacheWarmingService{api: api}
}

// WarmCache runs one warming pass. Failures for single counties or
// listings are logged and joined into the returned error.
func (s *CacheWarmingService) WarmCache(ctx context.Context) (WarmResult, error) {
	logger := observability.LoggerFromContext(ctx)
	var result WarmResult

	counties, err := s.api.FetchCounties(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to warm counties: %w", err)
	}
	result.Counties = len(counties)

	var errs []error
	for _, county := range counties {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		subCounties, err := s.api.FetchSubCounties(ctx, county.ID)
		if err != nil {
			logger.Warn().Err(err).Int("county_id", county.ID).Msg("failed to warm sub-counties")
			errs = append(errs, fmt.Errorf("county %d: %w", county.ID, err))
			continue
		}
		result.SubCounties += len(subCounties)
	}

	if err := s.warmFeatured(ctx, &result); err != nil {
		errs = append(errs, err)
	}

	logger.Info().
		Int("counties", result.Counties).
		Int("sub_counties", result.SubCounties).
		Int("properties", result.Properties).
		Msg("cache warming completed")
	return result, errors.Join(errs...)
}

// warmFeatured loads each home page listing individually so detail pages
// opened from the home page hit the cache
func (s *CacheWarmingService) warmFeatured(ctx context.Context, result *WarmResult) error {
	featured, err := s.api.FetchProperties(ctx, providers.PropertyQuery{Page: 1, Limit: FeaturedCount})
	if err != nil {
		return fmt.Errorf("failed to fetch featured listings: %w", err)
	}
	var errs []error
	for _, property := range featured {
		if _, err := s.api.FetchProperty(ctx, property.ID); err != nil {
			errs = append(errs, fmt.Errorf("property %s: %w", property.ID, err))
			continue
		}
		result.Properties++
	}
	return errors.Join(errs...)
}

// StartPeriodicWarming warms once, then again every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	logger := observability.LoggerFromContext(ctx)
	if _, err := s.WarmCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial cache warming incomplete")
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info().Msg("stopping cache warming")
				return
			case <-ticker.C:
				if _, err := s.WarmCache(ctx); err != nil {
					logger.Warn().Err(err).Msg("periodic cache warming incomplete")
				}
			}
		}
	}()
	logger.Info().Dur("interval", interval).Msg("started periodic cache warming")
}
