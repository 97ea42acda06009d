package services

import (
	"context"
	"net/http"
	"time"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

// IndexSyncService keeps the listing search index in line with the backend,
// either by full reindex or by applying listing events one at a time
type IndexSyncService struct {
	listings *ListingService
	index    providers.ListingSearchIndex
}

// NewIndexSyncService creates a new index sync service
func NewIndexSyncService(listings *ListingService, index providers.ListingSearchIndex) *IndexSyncService {
	return &IndexSyncService{listings: listings, index: index}
}

// Reindex walks every listing page into the index. reset drops the index first.
func (s *IndexSyncService) Reindex(ctx context.Context, reset bool) error {
	logger := observability.LoggerFromContext(ctx)
	if reset {
		logger.Info().Msg("resetting listings collection")
		if err := s.index.Reset(ctx); err != nil {
			return err
		}
	} else if err := s.index.EnsureCollection(ctx); err != nil {
		return err
	}

	names := s.locationNames(ctx)

	start := time.Now()
	total, indexed := 0, 0
	err := s.listings.AllProperties(ctx, func(page []entities.Property) error {
		for i := range page {
			names.attach(ctx, s.listings, &page[i])
		}
		n, err := s.index.Index(ctx, page)
		if err != nil {
			logger.Warn().Err(err).Int("failed", len(page)-n).Msg("some listings were not indexed")
		}
		total += len(page)
		indexed += n
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Int("listings", total).Int("indexed", indexed).Dur("duration", time.Since(start)).Msg("indexing finished")
	return nil
}

// Sync applies one listing event to the index. A listing the backend no
// longer returns is removed.
func (s *IndexSyncService) Sync(ctx context.Context, event *entities.ListingEvent) error {
	if event.EventType == entities.ListingDeleted {
		return s.index.Delete(ctx, event.PropertyID)
	}

	property, err := s.listings.Property(ctx, event.PropertyID)
	if apperrors.Is(err, apperrors.ErrorTypeNotFound) || apperrors.StatusOf(err) == http.StatusNotFound {
		return s.index.Delete(ctx, event.PropertyID)
	}
	if err != nil {
		return err
	}

	s.locationNames(ctx).attach(ctx, s.listings, property)
	_, err = s.index.Index(ctx, []entities.Property{*property})
	return err
}

// Watch applies listing events from bus until ctx is done
func (s *IndexSyncService) Watch(ctx context.Context, bus providers.EventBus) error {
	if err := s.index.EnsureCollection(ctx); err != nil {
		return err
	}
	observability.LoggerFromContext(ctx).Info().Msg("watching listing changes")
	return consumeListingEvents(ctx, bus, func(ctx context.Context, event *entities.ListingEvent) {
		if err := s.Sync(ctx, event); err != nil {
			observability.LoggerFromContext(ctx).Error().
				Err(err).
				Str("property_id", event.PropertyID).
				Str("event_type", string(event.EventType)).
				Msg("failed to sync listing")
			return
		}
		observability.LoggerFromContext(ctx).Debug().
			Str("property_id", event.PropertyID).
			Str("event_type", string(event.EventType)).
			Msg("listing synced")
	})
}

func (s *IndexSyncService) locationNames(ctx context.Context) *locationNames {
	counties, err := s.listings.Counties(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("counties unavailable, indexing without county names")
	}
	return newLocationNames(counties)
}

// locationNames fills in county and sub-county names the listing payload
// may omit, fetching each county's sub-counties once
type locationNames struct {
	counties    map[int]entities.County
	subCounties map[int]map[int]entities.SubCounty
}

func newLocationNames(counties []entities.County) *locationNames {
	n := &locationNames{
		counties:    make(map[int]entities.County, len(counties)),
		subCounties: make(map[int]map[int]entities.SubCounty),
	}
	for _, c := range counties {
		n.counties[c.ID] = c
	}
	return n
}

func (n *locationNames) attach(ctx context.Context, listings *ListingService, p *entities.Property) {
	if p.County == nil {
		if c, ok := n.counties[p.CountyID]; ok {
			p.County = &c
		}
	}
	if p.SubCounty != nil || p.SubCountyID == 0 {
		return
	}
	options, ok := n.subCounties[p.CountyID]
	if !ok {
		options = make(map[int]entities.SubCounty)
		fetched, err := listings.SubCounties(ctx, p.CountyID)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Int("county_id", p.CountyID).Msg("sub-counties unavailable")
		}
		for _, sc := range fetched {
			options[sc.ID] = sc
		}
		n.subCounties[p.CountyID] = options
	}
	if sc, ok := options[p.SubCountyID]; ok {
		p.SubCounty = &sc
	}
}
