package entities

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// All is the selector value that disables a filter dimension.
const All = "all"

// IDSelection is either "all" or a concrete numeric id.
type IDSelection struct {
	id  int
	set bool
}

// AnyID selects every id.
func AnyID() IDSelection { return IDSelection{} }

// OnlyID selects a single id.
func OnlyID(id int) IDSelection { return IDSelection{id: id, set: true} }

// IsAll reports whether the selection disables the dimension.
func (s IDSelection) IsAll() bool { return !s.set }

// ID returns the selected id; ok is false for "all".
func (s IDSelection) ID() (int, bool) { return s.id, s.set }

// Matches reports whether id satisfies the selection.
func (s IDSelection) Matches(id int) bool { return !s.set || s.id == id }

func (s IDSelection) String() string {
	if !s.set {
		return All
	}
	return strconv.Itoa(s.id)
}

// ParseIDSelection accepts "all", "" or a decimal id.
func ParseIDSelection(v string) (IDSelection, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, All) {
		return AnyID(), nil
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return IDSelection{}, fmt.Errorf("invalid id %q", v)
	}
	return OnlyID(id), nil
}

// FilterState is the set of user-chosen constraints of a browse session.
type FilterState struct {
	PropertyType PropertyType `json:"property_type"`
	County       IDSelection  `json:"-"`
	SubCounty    IDSelection  `json:"-"`
	PriceRange   string       `json:"price_range"`
	SearchText   string       `json:"search,omitempty"`
}

// NewFilterState returns a state with every selector at "all".
func NewFilterState() FilterState {
	return FilterState{
		PropertyType: All,
		County:       AnyID(),
		SubCounty:    AnyID(),
		PriceRange:   All,
	}
}

// WithCounty returns a copy with the county changed and the sub-county reset.
func (f FilterState) WithCounty(county IDSelection) FilterState {
	f.County = county
	f.SubCounty = AnyID()
	return f
}

// IsDefault reports whether no constraint is active.
func (f FilterState) IsDefault() bool {
	return IsAllValue(string(f.PropertyType)) && f.County.IsAll() && f.SubCounty.IsAll() &&
		IsAllValue(f.PriceRange) && strings.TrimSpace(f.SearchText) == ""
}

// Query encodes the state using the listing query parameter names.
func (f FilterState) Query() url.Values {
	q := url.Values{}
	if !IsAllValue(string(f.PropertyType)) {
		q.Set("type", string(f.PropertyType))
	}
	if !f.County.IsAll() {
		q.Set("county", f.County.String())
	}
	if !f.SubCounty.IsAll() {
		q.Set("sub_county", f.SubCounty.String())
	}
	if !IsAllValue(f.PriceRange) {
		q.Set("price", f.PriceRange)
	}
	if s := strings.TrimSpace(f.SearchText); s != "" {
		q.Set("search", s)
	}
	return q
}

// ParseFilterState builds a state from listing query parameters. A
// sub-county without a county is rejected.
func ParseFilterState(q url.Values) (FilterState, error) {
	state := NewFilterState()

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		state.PropertyType = PropertyType(strings.ToLower(v))
	}

	county, err := ParseIDSelection(q.Get("county"))
	if err != nil {
		return FilterState{}, fmt.Errorf("county: %w", err)
	}
	state = state.WithCounty(county)

	subCounty, err := ParseIDSelection(q.Get("sub_county"))
	if err != nil {
		return FilterState{}, fmt.Errorf("sub_county: %w", err)
	}
	if !subCounty.IsAll() && county.IsAll() {
		return FilterState{}, fmt.Errorf("sub_county requires county")
	}
	state.SubCounty = subCounty

	if v := strings.TrimSpace(q.Get("price")); v != "" && !IsAllValue(v) {
		if _, err := ParsePriceBracket(v); err != nil {
			return FilterState{}, err
		}
		state.PriceRange = v
	}

	state.SearchText = strings.TrimSpace(q.Get("search"))
	return state, nil
}

// IsAllValue reports whether a raw selector value means "all".
func IsAllValue(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}
