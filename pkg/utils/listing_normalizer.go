package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// NormalizationConfig holds the vocabulary used to map legacy listing data
// onto the normalized schema
type NormalizationConfig struct {
	// CategoryAliases maps normalized legacy categories to property types
	CategoryAliases map[string]string `json:"categoryAliases"`

	// AmenityKeywords maps an amenity category to the keywords that place a
	// free-text amenity in it
	AmenityKeywords map[string][]string `json:"amenityKeywords"`

	// UtilityKeywords mark an amenity as a utility included in the rent
	UtilityKeywords []string `json:"utilityKeywords"`

	// FurnishedKeywords mark a listing as furnished
	FurnishedKeywords []string `json:"furnishedKeywords"`
}

// OtherAmenities is the passthrough key for amenities matching no category
const OtherAmenities = "other"

// ListingNormalizer converts legacy listing fields
type ListingNormalizer struct {
	config *NormalizationConfig
}

// NewListingNormalizer loads the vocabulary from a JSON file
func NewListingNormalizer(configPath string) (*ListingNormalizer, error) {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config NormalizationConfig
	if err := json.Unmarshal(configFile, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &ListingNormalizer{config: &config}, nil
}

// DefaultListingNormalizer returns a normalizer with the built-in vocabulary
func DefaultListingNormalizer() *ListingNormalizer {
	return &ListingNormalizer{config: &NormalizationConfig{
		CategoryAliases: map[string]string{
			"apartments":       "apartment",
			"flat":             "apartment",
			"houses":           "house",
			"bedsitter":        "bedsitter",
			"bedsitters":       "bedsitter",
			"studio_apartment": "studio",
			"villas":           "villa",
			"office":           "commercial",
			"shop":             "commercial",
			"townhouses":       "townhouse",
			"maisonettes":      "maisonette",
			"bungalows":        "bungalow",
			"plot":             "land",
		},
		AmenityKeywords: map[string][]string{
			"security":   {"security", "cctv", "guard", "gated", "alarm", "electric fence"},
			"utilities":  {"water", "electricity", "borehole", "generator", "backup", "internet", "wifi", "solar"},
			"kitchen":    {"kitchen", "oven", "cooker", "fridge", "pantry"},
			"bathroom":   {"bathroom", "shower", "bathtub", "jacuzzi", "hot water", "en-suite", "ensuite"},
			"outdoor":    {"garden", "balcony", "terrace", "yard", "rooftop", "playground"},
			"flooring":   {"tile", "tiled", "wooden floor", "hardwood", "parquet", "carpet"},
			"facilities": {"gym", "pool", "lift", "elevator", "parking", "laundry", "clubhouse"},
			"location":   {"near", "close to", "proximity", "walking distance", "view"},
		},
		UtilityKeywords:   []string{"water", "electricity"},
		FurnishedKeywords: []string{"furnished"},
	}}
}

var pathPrefixRe = regexp.MustCompile(`^\.\.?/?`)

// NormalizeCategory turns a legacy category ("Town House") into a property
// type ("townhouse" when aliased, otherwise "town_house")
func (n *ListingNormalizer) NormalizeCategory(category string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(category)), "_")
	if alias, ok := n.config.CategoryAliases[normalized]; ok {
		return alias
	}
	return normalized
}

// CategorizeAmenities groups free-text amenities by category. An amenity
// goes to the first category, in name order, with a matching keyword;
// unmatched ones go under OtherAmenities.
func (n *ListingNormalizer) CategorizeAmenities(amenities []string) map[string][]string {
	categories := make([]string, 0, len(n.config.AmenityKeywords))
	for category := range n.config.AmenityKeywords {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	out := make(map[string][]string)
	for _, amenity := range amenities {
		amenity = strings.TrimSpace(amenity)
		if amenity == "" {
			continue
		}
		lower := strings.ToLower(amenity)

		placed := false
		for _, category := range categories {
			if containsAny(lower, n.config.AmenityKeywords[category]) {
				out[category] = append(out[category], amenity)
				placed = true
				break
			}
		}
		if !placed {
			out[OtherAmenities] = append(out[OtherAmenities], amenity)
		}
	}
	return out
}

// IsFurnished reports whether any amenity marks the listing furnished
func (n *ListingNormalizer) IsFurnished(amenities []string) bool {
	for _, amenity := range amenities {
		lower := strings.ToLower(amenity)
		if strings.Contains(lower, "unfurnished") {
			continue
		}
		if containsAny(lower, n.config.FurnishedKeywords) {
			return true
		}
	}
	return false
}

// IncludedUtilities returns the utility keywords mentioned by the amenities
func (n *ListingNormalizer) IncludedUtilities(amenities []string) map[string]any {
	out := make(map[string]any)
	for _, amenity := range amenities {
		lower := strings.ToLower(amenity)
		for _, utility := range n.config.UtilityKeywords {
			if strings.Contains(lower, utility) {
				out[utility] = true
			}
		}
	}
	return out
}

// AbsoluteImageURL turns a legacy relative image path into a URL served from
// siteURL. Paths that are already URLs are returned unchanged.
func AbsoluteImageURL(siteURL, imagePath string) string {
	if strings.HasPrefix(imagePath, "http://") || strings.HasPrefix(imagePath, "https://") {
		return imagePath
	}
	clean := pathPrefixRe.ReplaceAllString(imagePath, "")
	clean = strings.TrimPrefix(clean, "/")
	clean = strings.TrimPrefix(clean, "assets/images/")
	return strings.TrimRight(siteURL, "/") + "/assets/images/" + clean
}

// GetConfigPath returns the vocabulary file path
func GetConfigPath() string {
	if configPath := os.Getenv("LISTING_NORMALIZATION_CONFIG"); configPath != "" {
		return configPath
	}
	return "config/listing_normalization.json"
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
