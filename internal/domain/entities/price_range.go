package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// PriceBracket is a rent range. Closed brackets include both bounds; an open
// bracket has no upper bound.
type PriceBracket struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max,omitempty"`
	Open  bool    `json:"open"`
}

// PriceBrackets is the catalogue offered by the price selector.
var PriceBrackets = []PriceBracket{
	{Key: "0-10000", Label: "Under KES 10,000", Min: 0, Max: 10000},
	{Key: "10000-30000", Label: "KES 10,000 - 30,000", Min: 10000, Max: 30000},
	{Key: "30000-50000", Label: "KES 30,000 - 50,000", Min: 30000, Max: 50000},
	{Key: "50000-100000", Label: "KES 50,000 - 100,000", Min: 50000, Max: 100000},
	{Key: "100000+", Label: "KES 100,000+", Min: 100000, Open: true},
}

// Contains reports whether amount falls inside the bracket.
func (b PriceBracket) Contains(amount float64) bool {
	if amount < b.Min {
		return false
	}
	return b.Open || amount <= b.Max
}

// ParsePriceBracket resolves a bracket key. Catalogue keys return their
// catalogue entry; other "min-max" and "min+" keys are parsed as ad-hoc ranges.
func ParsePriceBracket(key string) (PriceBracket, error) {
	key = strings.TrimSpace(key)
	for _, b := range PriceBrackets {
		if b.Key == key {
			return b, nil
		}
	}

	if minStr, ok := strings.CutSuffix(key, "+"); ok {
		lo, err := parseAmount(minStr)
		if err != nil {
			return PriceBracket{}, fmt.Errorf("invalid price range %q: %w", key, err)
		}
		return PriceBracket{Key: key, Label: key, Min: lo, Open: true}, nil
	}

	minStr, maxStr, ok := strings.Cut(key, "-")
	if !ok {
		return PriceBracket{}, fmt.Errorf("invalid price range %q", key)
	}
	lo, err := parseAmount(minStr)
	if err != nil {
		return PriceBracket{}, fmt.Errorf("invalid price range %q: %w", key, err)
	}
	hi, err := parseAmount(maxStr)
	if err != nil {
		return PriceBracket{}, fmt.Errorf("invalid price range %q: %w", key, err)
	}
	if hi < lo {
		return PriceBracket{}, fmt.Errorf("invalid price range %q: upper bound below lower bound", key)
	}
	return PriceBracket{Key: key, Label: key, Min: lo, Max: hi}, nil
}

// BracketFor returns the catalogue bracket an amount is labelled with. The
// catalogue brackets share their edges, so an amount on an edge is assigned
// to the lower bracket.
func BracketFor(amount float64) (PriceBracket, bool) {
	for _, b := range PriceBrackets {
		if b.Contains(amount) {
			return b, true
		}
	}
	return PriceBracket{}, false
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %v", v)
	}
	return v, nil
}
