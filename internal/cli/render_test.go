package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

func TestFormatRent(t *testing.T) {
	assert.Equal(t, "KES 0", FormatRent(0))
	assert.Equal(t, "KES 950", FormatRent(950))
	assert.Equal(t, "KES 30,000", FormatRent(30000))
	assert.Equal(t, "KES 1,250,000", FormatRent(1250000))
}

func TestPrintProperties(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintProperties(&out, nil))
	assert.Equal(t, "No properties found matching your criteria.\n", out.String())

	out.Reset()
	err := PrintProperties(&out, []entities.Property{{
		ID:              "p1",
		Title:           "Garden flat",
		PropertyType:    entities.PropertyTypeApartment,
		RentAmount:      45000,
		Bedrooms:        2,
		LocationDetails: "Riverside Drive",
		County:          &entities.County{ID: 47, Name: "Nairobi"},
		SubCounty:       &entities.SubCounty{ID: 301, Name: "Westlands"},
	}})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Garden flat")
	assert.Contains(t, out.String(), "KES 45,000")
	assert.Contains(t, out.String(), "Riverside Drive, Westlands, Nairobi")
}

func TestPrintProperty(t *testing.T) {
	deposit := 90000.0
	p := &entities.Property{
		ID:            "p1",
		Title:         "Garden flat",
		PropertyType:  entities.PropertyTypeApartment,
		RentAmount:    45000,
		DepositAmount: &deposit,
		Description:   "Quiet compound",
		Amenities:     entities.Amenities{"security": []any{"CCTV", "Guard"}, "parking": []any{"Basement"}},
		Images: []entities.PropertyImage{
			{ImageURL: "http://img/1.jpg"},
			{ImageURL: "http://img/2.jpg", SecureURL: "https://img/2.jpg", IsPrimary: true},
		},
	}

	var out bytes.Buffer
	require.NoError(t, PrintProperty(&out, p))
	assert.Contains(t, out.String(), "KES 90,000")
	assert.Contains(t, out.String(), "CCTV, Guard")
	assert.Contains(t, out.String(), "Basement")
	assert.Contains(t, out.String(), "https://img/2.jpg")
	assert.Contains(t, out.String(), "Quiet compound")
}

func TestPrintUsers(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintUsers(&out, []entities.User{{ID: "u1", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}}))
	assert.Contains(t, out.String(), "Jane Doe")
	assert.Contains(t, out.String(), "jane@example.com")
}

func TestPrintError(t *testing.T) {
	var out bytes.Buffer
	fields := apperrors.ValidationErrors{}
	fields.Add("title", "Title is required")
	fields.Add("county_id", "Please select a county")
	PrintError(&out, fields)
	assert.Equal(t, "county_id: Please select a county\ntitle: Title is required\n", out.String())

	out.Reset()
	PrintError(&out, apperrors.NewNetworkError("dial failed", nil))
	assert.Equal(t, "Network error. Please check your connection and try again.\n", out.String())
}

func TestPrintError_PlainError(t *testing.T) {
	var out bytes.Buffer
	PrintError(&out, errors.New(`unknown command "nope"`))
	assert.Equal(t, "unknown command \"nope\"\n", out.String())
}
