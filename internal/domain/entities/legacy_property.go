package entities

// LegacyProperty is a record of the flat properties.json catalogue that
// predates the normalized backend schema. It is only read by the bulk
// uploader.
type LegacyProperty struct {
	ID          int              `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	Location    string           `json:"location"`
	Category    string           `json:"category"`
	Bedrooms    int              `json:"bedrooms"`
	Bathrooms   int              `json:"bathrooms"`
	Area        float64          `json:"area,omitempty"`
	Amenities   []string         `json:"amenities"`
	Images      []string         `json:"images"`
	VirtualTour string           `json:"virtualTour,omitempty"`
	Management  LegacyManagement `json:"management"`
}

// LegacyManagement is the managing agency of a legacy record
type LegacyManagement struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// LegacyCatalog is the top-level document of properties.json
type LegacyCatalog struct {
	Properties []LegacyProperty `json:"properties"`
}
