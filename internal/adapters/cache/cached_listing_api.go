package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
)

// Cache TTLs (in seconds)
const (
	countiesTTL    = 3600
	subCountiesTTL = 3600
	propertyTTL    = 120
)

func countiesCacheKey() string {
	return "counties"
}

func subCountiesCacheKey(countyID int) string {
	return fmt.Sprintf("sub_counties:%d", countyID)
}

func propertyCacheKey(id string) string {
	return fmt.Sprintf("property:%s", id)
}

// CachedListingAPI wraps a ListingAPI with caching of the location
// hierarchy and single listings. Listing pages always go to the backend.
type CachedListingAPI struct {
	api   providers.ListingAPI
	cache providers.CacheProvider
}

var _ providers.ListingAPI = (*CachedListingAPI)(nil)

// NewCachedListingAPI creates a new cached listing API
func NewCachedListingAPI(api providers.ListingAPI, cache providers.CacheProvider) *CachedListingAPI {
	return &CachedListingAPI{api: api, cache: cache}
}

// FetchProperties is not cached
func (a *CachedListingAPI) FetchProperties(ctx context.Context, query providers.PropertyQuery) ([]entities.Property, error) {
	return a.api.FetchProperties(ctx, query)
}

// FetchProperty retrieves a listing with caching
func (a *CachedListingAPI) FetchProperty(ctx context.Context, id string) (*entities.Property, error) {
	var property entities.Property
	if a.lookup(ctx, propertyCacheKey(id), &property) {
		return &property, nil
	}

	fetched, err := a.api.FetchProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	a.store(ctx, propertyCacheKey(id), fetched, propertyTTL)
	return fetched, nil
}

// FetchCounties retrieves the counties with caching
func (a *CachedListingAPI) FetchCounties(ctx context.Context) ([]entities.County, error) {
	var counties []entities.County
	if a.lookup(ctx, countiesCacheKey(), &counties) {
		return counties, nil
	}

	fetched, err := a.api.FetchCounties(ctx)
	if err != nil {
		return nil, err
	}
	a.store(ctx, countiesCacheKey(), fetched, countiesTTL)
	return fetched, nil
}

// FetchSubCounties retrieves the sub-counties of a county with caching
func (a *CachedListingAPI) FetchSubCounties(ctx context.Context, countyID int) ([]entities.SubCounty, error) {
	var subCounties []entities.SubCounty
	if a.lookup(ctx, subCountiesCacheKey(countyID), &subCounties) {
		return subCounties, nil
	}

	fetched, err := a.api.FetchSubCounties(ctx, countyID)
	if err != nil {
		return nil, err
	}
	a.store(ctx, subCountiesCacheKey(countyID), fetched, subCountiesTTL)
	return fetched, nil
}

// InvalidateProperty drops a cached listing after it was changed
func (a *CachedListingAPI) InvalidateProperty(ctx context.Context, id string) {
	if err := a.cache.Delete(ctx, propertyCacheKey(id)); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("property_id", id).Msg("failed to invalidate cached property")
	}
}

func (a *CachedListingAPI) lookup(ctx context.Context, key string, out any) bool {
	cached, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(cached, out); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false
	}
	return true
}

func (a *CachedListingAPI) store(ctx context.Context, key string, value any, ttl int) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, ttl); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("failed to cache value")
	}
}
