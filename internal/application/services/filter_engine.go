package services

import (
	"github.com/realtorspace/realtor-space/internal/domain/entities"
)

// ApplyFilters returns the properties satisfying every active constraint of
// state, in source order. The input slice is never modified and the result is
// always a new slice, empty when nothing matches.
//
// A price range that cannot be resolved matches nothing.
func ApplyFilters(properties []entities.Property, state entities.FilterState) []entities.Property {
	match := compileFilter(state)

	out := make([]entities.Property, 0, len(properties))
	for i := range properties {
		if match(&properties[i]) {
			out = append(out, properties[i])
		}
	}
	return out
}

// MatchesFilters reports whether a single property satisfies state.
func MatchesFilters(p *entities.Property, state entities.FilterState) bool {
	return compileFilter(state)(p)
}

func compileFilter(state entities.FilterState) func(*entities.Property) bool {
	typeFilter := !entities.IsAllValue(string(state.PropertyType))

	var bracket *entities.PriceBracket
	priceFilter := !entities.IsAllValue(state.PriceRange)
	if priceFilter {
		if b, err := entities.ParsePriceBracket(state.PriceRange); err == nil {
			bracket = &b
		}
	}

	return func(p *entities.Property) bool {
		if typeFilter && p.PropertyType != state.PropertyType {
			return false
		}
		if !state.County.Matches(p.CountyID) {
			return false
		}
		if !state.SubCounty.Matches(p.SubCountyID) {
			return false
		}
		if priceFilter {
			// a missing rent is treated as 0
			if bracket == nil || !bracket.Contains(p.RentAmount) {
				return false
			}
		}
		return true
	}
}
