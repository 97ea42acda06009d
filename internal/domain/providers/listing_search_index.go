package providers

import (
	"context"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
)

// ListingSearchIndex defines the free-text listing index
type ListingSearchIndex interface {
	// EnsureCollection creates the index if it does not exist
	EnsureCollection(ctx context.Context) error

	// Reset drops and recreates the index
	Reset(ctx context.Context) error

	// Index upserts listings and returns how many were accepted
	Index(ctx context.Context, properties []entities.Property) (int, error)

	// Delete removes a listing
	Delete(ctx context.Context, id string) error

	// Suggest returns listings matching a free-text query
	Suggest(ctx context.Context, query string, limit int) ([]entities.ListingSuggestion, error)
}
