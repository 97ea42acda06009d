package services

import (
	"context"
	"time"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
)

const listingEventTimeout = 5 * time.Second

// ListingEventPublisher announces agent changes to listings on the event bus
type ListingEventPublisher struct {
	bus providers.EventBus
}

// NewListingEventPublisher creates a new publisher
func NewListingEventPublisher(bus providers.EventBus) *ListingEventPublisher {
	return &ListingEventPublisher{bus: bus}
}

// Publish sends one change event. A failed publish is logged: the change
// itself already succeeded and caches expire on their own.
func (p *ListingEventPublisher) Publish(ctx context.Context, eventType entities.ListingEventType, propertyID string) {
	event := entities.NewListingEvent(propertyID, eventType)
	if err := p.bus.Publish(ctx, providers.EventChannelListingChanges, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("property_id", propertyID).
			Str("event_type", string(eventType)).
			Msg("failed to publish listing event")
	}
}

// consumeListingEvents calls handle for every listing event until ctx is
// done or the subscription ends
func consumeListingEvents(ctx context.Context, bus providers.EventBus, handle func(ctx context.Context, event *entities.ListingEvent)) error {
	events, err := bus.Subscribe(ctx, providers.EventChannelListingChanges)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event == nil {
				continue
			}
			eventCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listingEventTimeout)
			handle(eventCtx, event)
			cancel()
		}
	}
}
