package entities

import (
	"errors"
	"time"
)

// PropertyType is the listing category reported by the backend
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeCondo      PropertyType = "condo"
	PropertyTypeTownhouse  PropertyType = "townhouse"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeBedsitter  PropertyType = "bedsitter"
	PropertyTypeStudio     PropertyType = "studio"
	PropertyTypeMaisonette PropertyType = "maisonette"
	PropertyTypeBungalow   PropertyType = "bungalow"
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeCommercial PropertyType = "commercial"
)

// PropertyTypes lists the categories offered in selectors, in display order.
var PropertyTypes = []PropertyType{
	PropertyTypeApartment,
	PropertyTypeHouse,
	PropertyTypeCondo,
	PropertyTypeTownhouse,
	PropertyTypeVilla,
	PropertyTypeBedsitter,
	PropertyTypeStudio,
	PropertyTypeMaisonette,
	PropertyTypeBungalow,
	PropertyTypeLand,
	PropertyTypeCommercial,
}

// IsKnown reports whether t is one of PropertyTypes. Unknown values coming
// from the backend are kept as-is.
func (t PropertyType) IsKnown() bool {
	for _, known := range PropertyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Property represents a rental listing
type Property struct {
	ID                string          `json:"id"`
	AgentID           string          `json:"agent_id,omitempty"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	PropertyType      PropertyType    `json:"property_type"`
	Bedrooms          int             `json:"bedrooms"`
	Bathrooms         int             `json:"bathrooms"`
	SquareMeters      float64         `json:"square_meters,omitempty"`
	RentAmount        float64         `json:"rent_amount"`
	DepositAmount     *float64        `json:"deposit_amount,omitempty"`
	CountyID          int             `json:"county_id"`
	SubCountyID       int             `json:"sub_county_id"`
	LocationDetails   string          `json:"location_details,omitempty"`
	Amenities         Amenities       `json:"amenities,omitempty"`
	UtilitiesIncluded map[string]any  `json:"utilities_included,omitempty"`
	ParkingSpaces     int             `json:"parking_spaces"`
	IsFurnished       bool            `json:"is_furnished"`
	IsAvailable       bool            `json:"is_available"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	County            *County         `json:"county,omitempty"`
	SubCounty         *SubCounty      `json:"sub_county,omitempty"`
	Agent             *User           `json:"agent,omitempty"`
	Images            []PropertyImage `json:"images,omitempty"`
}

// PropertyImage is a hosted image attached to a property
type PropertyImage struct {
	ID           string `json:"id"`
	PropertyID   string `json:"property_id"`
	ImageURL     string `json:"image_url"`
	SecureURL    string `json:"secure_url,omitempty"`
	PublicID     string `json:"public_id,omitempty"`
	IsPrimary    bool   `json:"is_primary"`
	DisplayOrder int    `json:"display_order"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Format       string `json:"format,omitempty"`
	Bytes        int64  `json:"bytes,omitempty"`
}

// Validate checks the fields every listing card depends on.
func (p *Property) Validate() error {
	if p.ID == "" {
		return errors.New("property is missing id")
	}
	if p.Title == "" {
		return errors.New("property " + p.ID + " is missing title")
	}
	return nil
}

// PrimaryImage returns the image flagged primary, else the first image.
func (p *Property) PrimaryImage() (PropertyImage, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0], true
	}
	return PropertyImage{}, false
}

// PropertyInput is the create/update payload sent by agents
type PropertyInput struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	PropertyType      PropertyType   `json:"property_type"`
	Bedrooms          *int           `json:"bedrooms"`
	Bathrooms         *int           `json:"bathrooms"`
	SquareMeters      *float64       `json:"square_meters,omitempty"`
	RentAmount        float64        `json:"rent_amount"`
	DepositAmount     *float64       `json:"deposit_amount,omitempty"`
	CountyID          int            `json:"county_id"`
	SubCountyID       *int           `json:"sub_county_id,omitempty"`
	LocationDetails   string         `json:"location_details"`
	Amenities         Amenities      `json:"amenities,omitempty"`
	UtilitiesIncluded map[string]any `json:"utilities_included,omitempty"`
	ParkingSpaces     int            `json:"parking_spaces"`
	IsFurnished       bool           `json:"is_furnished"`
	IsAvailable       bool           `json:"is_available"`
	ImageURLs         []string       `json:"images,omitempty"`
}

// ImageUpload is one local file selected for upload
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the file size in bytes.
func (u ImageUpload) Size() int64 {
	return int64(len(u.Data))
}
