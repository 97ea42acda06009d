package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/realtorspace/realtor-space/pkg/config"
	"github.com/realtorspace/realtor-space/pkg/retry"
)

// DefaultCollection is the listings collection name
const DefaultCollection = "listings"

// Client represents a Typesense client bound to the listings collection
type Client struct {
	client     *typesense.Client
	collection string
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.Connect(ctx, retry.DefaultConfig(), "typesense", func(ctx context.Context) error {
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		ok, err := client.Health(healthCtx, 2*time.Second)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("typesense reports unhealthy")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	log.Info().Str("collection", collection).Msg("connected to Typesense")
	return &Client{client: client, collection: collection}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// Collection returns the listings collection name
func (c *Client) Collection() string {
	return c.collection
}

// InitSchema ensures the listings collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == c.collection {
			return nil
		}
	}

	if _, err := c.client.Collections().Create(ctx, ListingsSchema(c.collection)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", c.collection).Msg("created Typesense collection")
	return nil
}

// DropCollection deletes the listings collection
func (c *Client) DropCollection(ctx context.Context) error {
	if _, err := c.client.Collection(c.collection).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", c.collection, err)
	}
	return nil
}

// ListingsSchema is the collection schema of listing documents
func ListingsSchema(name string) *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "description", Type: "string", Optional: pointer.True()},
			{Name: "property_type", Type: "string", Facet: pointer.True()},
			{Name: "county_id", Type: "int32", Facet: pointer.True()},
			{Name: "sub_county_id", Type: "int32", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "county_name", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "sub_county_name", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "location_details", Type: "string", Optional: pointer.True()},
			{Name: "rent_amount", Type: "float", Facet: pointer.True()},
			{Name: "price_bracket", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "bedrooms", Type: "int32", Optional: pointer.True()},
			{Name: "is_available", Type: "bool"},
			{Name: "tags", Type: "string[]", Optional: pointer.True()},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}
}
