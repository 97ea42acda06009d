package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	tsclient "github.com/realtorspace/realtor-space/internal/infrastructure/clients/typesense"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
)

const maxListingTags = 50

// TypesenseListingIndex implements listing suggestions using Typesense
type TypesenseListingIndex struct {
	client *tsclient.Client
}

var _ providers.ListingSearchIndex = (*TypesenseListingIndex)(nil)

// NewTypesenseListingIndex creates a new Typesense listing index
func NewTypesenseListingIndex(client *tsclient.Client) *TypesenseListingIndex {
	return &TypesenseListingIndex{client: client}
}

// EnsureCollection ensures the collection exists
func (a *TypesenseListingIndex) EnsureCollection(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Reset drops the collection and creates it again
func (a *TypesenseListingIndex) Reset(ctx context.Context) error {
	if err := a.client.DropCollection(ctx); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to drop listings collection")
	}
	return a.client.InitSchema(ctx)
}

// Index upserts every property and returns the number indexed. Failed
// documents are skipped and reported together in the returned error.
func (a *TypesenseListingIndex) Index(ctx context.Context, properties []entities.Property) (int, error) {
	documents := a.client.Client().Collection(a.client.Collection()).Documents()

	var errs []error
	indexed := 0
	for i := range properties {
		doc := buildListingDocument(&properties[i])
		if _, err := documents.Upsert(ctx, doc); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", properties[i].ID, err))
			continue
		}
		indexed++
	}
	return indexed, errors.Join(errs...)
}

// Delete removes a listing from the index
func (a *TypesenseListingIndex) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete listing %s from index: %w", id, err)
	}
	return nil
}

// Suggest searches titles, descriptions, locations and tags
func (a *TypesenseListingIndex) Suggest(ctx context.Context, query string, limit int) ([]entities.ListingSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entities.ListingSuggestion{}, nil
	}
	if limit <= 0 {
		limit = 8
	}

	params := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("title,location_details,county_name,sub_county_name,tags,description"),
		FilterBy: pointer.String("is_available:=true"),
		Page:     pointer.Int(1),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(a.client.Collection()).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}

	suggestions := []entities.ListingSuggestion{}
	if result.Hits == nil {
		return suggestions, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		suggestion, ok := suggestionFromDocument(*hit.Document)
		if !ok {
			continue
		}
		if hit.Highlights != nil {
			for _, h := range *hit.Highlights {
				if h.Snippet != nil && *h.Snippet != "" {
					suggestion.Highlight = *h.Snippet
					break
				}
			}
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, nil
}

func buildListingDocument(p *entities.Property) map[string]interface{} {
	tags := newTagBuilder(maxListingTags)
	tags.add(string(p.PropertyType), p.LocationDetails)
	for _, key := range []entities.AmenityKey{
		entities.AmenitySecurity,
		entities.AmenityUtilities,
		entities.AmenityKitchen,
		entities.AmenityBathroom,
		entities.AmenityOutdoor,
		entities.AmenityFlooring,
		entities.AmenityFacilities,
		entities.AmenityLocation,
	} {
		tags.add(p.Amenities.Items(key)...)
	}
	if p.IsFurnished {
		tags.add("furnished")
	}

	doc := map[string]interface{}{
		"id":            p.ID,
		"title":         p.Title,
		"description":   p.Description,
		"property_type": string(p.PropertyType),
		"county_id":     p.CountyID,
		"rent_amount":   p.RentAmount,
		"bedrooms":      p.Bedrooms,
		"is_available":  p.IsAvailable,
		"created_at":    p.CreatedAt.Unix(),
	}
	if p.SubCountyID != 0 {
		doc["sub_county_id"] = p.SubCountyID
	}
	if p.County != nil && p.County.Name != "" {
		doc["county_name"] = p.County.Name
		tags.add(p.County.Name)
	}
	if p.SubCounty != nil && p.SubCounty.Name != "" {
		doc["sub_county_name"] = p.SubCounty.Name
		tags.add(p.SubCounty.Name)
	}
	if p.LocationDetails != "" {
		doc["location_details"] = p.LocationDetails
	}
	if bracket, ok := entities.BracketFor(p.RentAmount); ok {
		doc["price_bracket"] = bracket.Key
	}
	if list := tags.tags(); len(list) > 0 {
		doc["tags"] = list
	}
	return doc
}

func suggestionFromDocument(doc map[string]interface{}) (entities.ListingSuggestion, bool) {
	id, _ := doc["id"].(string)
	title, _ := doc["title"].(string)
	if id == "" || title == "" {
		return entities.ListingSuggestion{}, false
	}

	s := entities.ListingSuggestion{ID: id, Title: title}
	if v, ok := doc["property_type"].(string); ok {
		s.PropertyType = entities.PropertyType(v)
	}
	if v, ok := doc["county_name"].(string); ok {
		s.CountyName = v
	}
	if v, ok := doc["sub_county_name"].(string); ok {
		s.SubCountyName = v
	}
	if v, ok := doc["rent_amount"].(float64); ok {
		s.RentAmount = v
	}
	return s, true
}

type tagBuilder struct {
	seen  map[string]struct{}
	list  []string
	limit int
}

func newTagBuilder(limit int) *tagBuilder {
	if limit <= 0 {
		limit = maxListingTags
	}
	return &tagBuilder{seen: make(map[string]struct{}), limit: limit}
}

func (b *tagBuilder) add(values ...string) {
	for _, value := range values {
		if len(b.list) >= b.limit {
			return
		}
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, exists := b.seen[normalized]; exists {
			continue
		}
		b.seen[normalized] = struct{}{}
		b.list = append(b.list, normalized)
	}
}

func (b *tagBuilder) tags() []string {
	return b.list
}
