package services

import (
	"context"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

// FeaturedCount is the number of listings shown on the home page
const FeaturedCount = 3

// ListingService answers one-shot listing queries
type ListingService struct {
	api      providers.ListingAPI
	pageSize int
}

// NewListingService creates a new listing service
func NewListingService(api providers.ListingAPI, pageSize int) *ListingService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ListingService{api: api, pageSize: pageSize}
}

// API returns the backend the service reads from
func (s *ListingService) API() providers.ListingAPI {
	return s.api
}

// Search fetches a page of listings using the state's search text and
// applies the remaining filters locally
func (s *ListingService) Search(ctx context.Context, state entities.FilterState, page, limit int) ([]entities.Property, error) {
	if limit <= 0 {
		limit = s.pageSize
	}
	if page <= 0 {
		page = 1
	}
	properties, err := s.api.FetchProperties(ctx, providers.PropertyQuery{
		Page:   page,
		Limit:  limit,
		Search: state.SearchText,
	})
	if err != nil {
		return nil, err
	}
	return ApplyFilters(properties, state), nil
}

// Featured returns the first FeaturedCount listings
func (s *ListingService) Featured(ctx context.Context) ([]entities.Property, error) {
	properties, err := s.api.FetchProperties(ctx, providers.PropertyQuery{Page: 1, Limit: FeaturedCount})
	if err != nil {
		return nil, err
	}
	if len(properties) > FeaturedCount {
		properties = properties[:FeaturedCount]
	}
	return properties, nil
}

// Property returns a single listing
func (s *ListingService) Property(ctx context.Context, id string) (*entities.Property, error) {
	return s.api.FetchProperty(ctx, id)
}

// Counties returns every county
func (s *ListingService) Counties(ctx context.Context) ([]entities.County, error) {
	return s.api.FetchCounties(ctx)
}

// SubCounties returns the sub-counties of a county
func (s *ListingService) SubCounties(ctx context.Context, countyID int) ([]entities.SubCounty, error) {
	return s.api.FetchSubCounties(ctx, countyID)
}

// AllProperties pages through every public listing, calling fn per page. It
// stops when a page comes back short or repeats the previous page.
func (s *ListingService) AllProperties(ctx context.Context, fn func(page []entities.Property) error) error {
	var previousFirst string
	for page := 1; ; page++ {
		properties, err := s.api.FetchProperties(ctx, providers.PropertyQuery{Page: page, Limit: s.pageSize})
		if err != nil {
			return err
		}
		if len(properties) > 0 {
			if properties[0].ID == previousFirst {
				return nil
			}
			previousFirst = properties[0].ID
			if err := fn(properties); err != nil {
				return err
			}
		}
		if len(properties) < s.pageSize {
			return nil
		}
	}
}
