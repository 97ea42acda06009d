package entities

import "sort"

// AmenityKey names a known amenity category
type AmenityKey string

const (
	AmenitySecurity   AmenityKey = "security"
	AmenityUtilities  AmenityKey = "utilities"
	AmenityKitchen    AmenityKey = "kitchen"
	AmenityBathroom   AmenityKey = "bathroom"
	AmenityOutdoor    AmenityKey = "outdoor"
	AmenityFlooring   AmenityKey = "flooring"
	AmenityFacilities AmenityKey = "facilities"
	AmenityLocation   AmenityKey = "location"
)

var knownAmenityKeys = map[AmenityKey]struct{}{
	AmenitySecurity:   {},
	AmenityUtilities:  {},
	AmenityKitchen:    {},
	AmenityBathroom:   {},
	AmenityOutdoor:    {},
	AmenityFlooring:   {},
	AmenityFacilities: {},
	AmenityLocation:   {},
}

// Amenities maps amenity categories to free-form values. Keys outside the
// known set are carried through untouched.
type Amenities map[string]any

// Get returns the value stored under a known key.
func (a Amenities) Get(key AmenityKey) (any, bool) {
	v, ok := a[string(key)]
	return v, ok
}

// Set stores a value under a known key.
func (a Amenities) Set(key AmenityKey, value any) {
	a[string(key)] = value
}

// Items returns the string items stored under key, accepting either a single
// string or a list.
func (a Amenities) Items(key AmenityKey) []string {
	v, ok := a.Get(key)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Extra returns the passthrough keys, sorted.
func (a Amenities) Extra() []string {
	var out []string
	for k := range a {
		if _, known := knownAmenityKeys[AmenityKey(k)]; !known {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
