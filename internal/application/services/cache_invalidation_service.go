package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

// InvalidateFunc drops the cached reads that depend on one listing
type InvalidateFunc func(ctx context.Context, propertyID string)

// CacheInvalidationService invalidates cached listing reads when an agent
// changes a listing. With an event bus every website instance sees the change;
// without one only the local caches are invalidated.
type CacheInvalidationService struct {
	eventBus   providers.EventBus
	publisher  *ListingEventPublisher
	invalidate []InvalidateFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCacheInvalidationService creates a new cache invalidation service.
// eventBus may be nil.
func NewCacheInvalidationService(eventBus providers.EventBus, invalidate ...InvalidateFunc) *CacheInvalidationService {
	s := &CacheInvalidationService{
		eventBus:   eventBus,
		invalidate: invalidate,
	}
	if eventBus != nil {
		s.publisher = NewListingEventPublisher(eventBus)
	}
	return s
}

// Start begins listening for listing events. It is a no-op without a bus.
func (s *CacheInvalidationService) Start(ctx context.Context) error {
	if s.eventBus == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("cache invalidation service already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	events, err := s.eventBus.Subscribe(ctx, providers.EventChannelListingChanges)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to listing changes: %w", err)
	}
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.processEvents(ctx, events)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops listening and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Info().Msg("cache invalidation service stopped")
}

// ListingChanged is called after an agent changed a listing. With a bus the
// change is published and invalidation happens when the event comes back;
// otherwise the local caches are invalidated right away.
func (s *CacheInvalidationService) ListingChanged(ctx context.Context, eventType entities.ListingEventType, propertyID string) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, eventType, propertyID)
		return
	}
	s.invalidateListing(ctx, propertyID)
}

func (s *CacheInvalidationService) processEvents(ctx context.Context, events <-chan *entities.ListingEvent) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(ctx, event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(ctx context.Context, event *entities.ListingEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listingEventTimeout)
	defer cancel()

	log.Debug().
		Str("event_id", event.ID).
		Str("property_id", event.PropertyID).
		Str("event_type", string(event.EventType)).
		Msg("processing cache invalidation")
	s.invalidateListing(ctx, event.PropertyID)
}

func (s *CacheInvalidationService) invalidateListing(ctx context.Context, propertyID string) {
	for _, invalidate := range s.invalidate {
		invalidate(ctx, propertyID)
	}
}
