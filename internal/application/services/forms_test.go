package services_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func validInput() *entities.PropertyInput {
	return &entities.PropertyInput{
		Title:           "Westlands flat",
		Description:     "Two bedroom flat near Sarit",
		PropertyType:    entities.PropertyTypeApartment,
		Bedrooms:        intPtr(2),
		Bathrooms:       intPtr(1),
		SquareMeters:    floatPtr(85),
		RentAmount:      45000,
		CountyID:        47,
		SubCountyID:     intPtr(302),
		LocationDetails: "Westlands, Nairobi",
		IsAvailable:     true,
	}
}

func validationFields(t *testing.T, err error) apperrors.ValidationErrors {
	t.Helper()
	var fields apperrors.ValidationErrors
	require.True(t, errors.As(err, &fields), "expected validation errors, got %v", err)
	return fields
}

func TestValidatePropertyInput(t *testing.T) {
	assert.NoError(t, services.ValidatePropertyInput(validInput(), nairobiSubCounties()))
	assert.NoError(t, services.ValidatePropertyInput(validInput(), nil))

	empty := &entities.PropertyInput{}
	fields := validationFields(t, services.ValidatePropertyInput(empty, nil))
	assert.Equal(t, "Title is required", fields["title"])
	assert.Equal(t, "Valid rent amount is required", fields["rent_amount"])
	assert.Equal(t, "County is required", fields["county_id"])
	assert.Contains(t, fields, "bedrooms")
	assert.Contains(t, fields, "square_meters")

	foreign := validInput()
	foreign.SubCountyID = intPtr(220)
	fields = validationFields(t, services.ValidatePropertyInput(foreign, nairobiSubCounties()))
	assert.Equal(t, "Sub-county does not belong to the selected county", fields["sub_county_id"])
	assert.Len(t, fields, 1)
}

func TestSelectImages(t *testing.T) {
	small := entities.ImageUpload{Filename: "front.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}
	pdf := entities.ImageUpload{Filename: "lease.pdf", ContentType: "application/pdf", Data: []byte("pdf")}
	huge := entities.ImageUpload{Filename: "raw.png", ContentType: "image/png", Data: bytes.Repeat([]byte{1}, services.MaxImageBytes+1)}

	accepted, rejected, err := services.SelectImages([]entities.ImageUpload{small, pdf, huge}, 0)
	require.NoError(t, err)
	assert.Equal(t, []entities.ImageUpload{small}, accepted)
	assert.Equal(t, []string{"lease.pdf", "raw.png"}, rejected)

	_, _, err = services.SelectImages([]entities.ImageUpload{small, small}, services.MaxImages-1)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	_, rejected, err = services.SelectImages([]entities.ImageUpload{pdf}, 0)
	assert.Error(t, err)
	assert.Equal(t, []string{"lease.pdf"}, rejected)
}

func TestValidatePasswordReset(t *testing.T) {
	assert.NoError(t, services.ValidatePasswordReset(entities.PasswordResetRequest{
		Token: "reset-1", Password: "Secret123", ConfirmPassword: "Secret123",
	}))

	fields := validationFields(t, services.ValidatePasswordReset(entities.PasswordResetRequest{}))
	assert.Equal(t, "Reset token is required", fields["token"])
	assert.Equal(t, "New password is required", fields["password"])
	assert.Equal(t, "Please confirm your password", fields["confirm_password"])

	fields = validationFields(t, services.ValidatePasswordReset(entities.PasswordResetRequest{
		Token: "reset-1", Password: "secret123", ConfirmPassword: "secret124",
	}))
	assert.Contains(t, fields["password"], "uppercase")
	assert.Equal(t, "Passwords do not match", fields["confirm_password"])
}

func TestValidateLoginAndEmail(t *testing.T) {
	assert.NoError(t, services.ValidateLogin(entities.LoginRequest{Email: "agent@example.com", Password: "x"}))

	fields := validationFields(t, services.ValidateLogin(entities.LoginRequest{Email: "agent@", Password: ""}))
	assert.Equal(t, "Please enter a valid email address", fields["email"])
	assert.Equal(t, "Password is required", fields["password"])

	assert.NoError(t, services.ValidateEmail("agent@example.com"))
	assert.Error(t, services.ValidateEmail("agent@localhost"))
	assert.Error(t, services.ValidateEmail("Agent <agent@example.com>"))
}

func TestValidateRegistration(t *testing.T) {
	req := entities.RegisterRequest{
		FirstName: "Jane", LastName: "Wanjiku", Email: "jane@example.com",
		Password: "Secret123", UserType: entities.UserTypeAgent,
	}
	assert.NoError(t, services.ValidateRegistration(req))

	req.UserType = entities.UserTypeAdmin
	fields := validationFields(t, services.ValidateRegistration(req))
	assert.Equal(t, "Account type must be client or agent", fields["user_type"])

	req.UserType = entities.UserTypeClient
	req.Password = "short"
	fields = validationFields(t, services.ValidateRegistration(req))
	assert.Equal(t, "Password must be at least 8 characters", fields["password"])
}
