package entities

import "time"

// County is a top-level administrative region
type County struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// SubCounty is a subdivision of a County
type SubCounty struct {
	ID        int       `json:"id"`
	CountyID  int       `json:"county_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
