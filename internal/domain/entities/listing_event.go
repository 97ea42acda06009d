package entities

import (
	"time"

	"github.com/google/uuid"
)

// ListingEventType is the kind of change made to a listing
type ListingEventType string

const (
	ListingCreated       ListingEventType = "listing_created"
	ListingUpdated       ListingEventType = "listing_updated"
	ListingDeleted       ListingEventType = "listing_deleted"
	ListingImagesChanged ListingEventType = "listing_images_changed"
)

// IsKnown reports whether t is one of the listing event kinds
func (t ListingEventType) IsKnown() bool {
	switch t {
	case ListingCreated, ListingUpdated, ListingDeleted, ListingImagesChanged:
		return true
	}
	return false
}

// ListingEvent announces an agent change to a listing
type ListingEvent struct {
	ID         string           `json:"id"`
	PropertyID string           `json:"property_id"`
	EventType  ListingEventType `json:"event_type"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewListingEvent creates a new listing event
func NewListingEvent(propertyID string, eventType ListingEventType) *ListingEvent {
	return &ListingEvent{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		EventType:  eventType,
		Timestamp:  time.Now().UTC(),
	}
}
