package entities

// ListingSuggestion is a free-text search hit shown in the suggest box
type ListingSuggestion struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	PropertyType  PropertyType `json:"property_type"`
	CountyName    string       `json:"county_name,omitempty"`
	SubCountyName string       `json:"sub_county_name,omitempty"`
	RentAmount    float64      `json:"rent_amount"`
	Highlight     string       `json:"highlight,omitempty"`
}
