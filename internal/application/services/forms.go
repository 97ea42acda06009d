package services

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

// Image upload limits
const (
	MaxImageBytes = 10 << 20
	MaxImages     = 10
)

const minPasswordLength = 8

// ValidatePropertyInput checks the agent property form. When subCounties is
// non-nil it is the option list of the chosen county and a selected
// sub-county must be one of them.
func ValidatePropertyInput(input *entities.PropertyInput, subCounties []entities.SubCounty) error {
	errs := apperrors.ValidationErrors{}

	if strings.TrimSpace(input.Title) == "" {
		errs.Add("title", "Title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		errs.Add("description", "Description is required")
	}
	if input.RentAmount <= 0 {
		errs.Add("rent_amount", "Valid rent amount is required")
	}
	if input.DepositAmount != nil && *input.DepositAmount < 0 {
		errs.Add("deposit_amount", "Deposit cannot be negative")
	}
	if strings.TrimSpace(input.LocationDetails) == "" {
		errs.Add("location_details", "Location details are required")
	}
	if input.Bedrooms == nil || *input.Bedrooms < 0 {
		errs.Add("bedrooms", "Valid number of bedrooms is required")
	}
	if input.Bathrooms == nil || *input.Bathrooms < 0 {
		errs.Add("bathrooms", "Valid number of bathrooms is required")
	}
	if input.SquareMeters == nil || *input.SquareMeters <= 0 {
		errs.Add("square_meters", "Valid area is required")
	}
	if input.ParkingSpaces < 0 {
		errs.Add("parking_spaces", "Parking spaces cannot be negative")
	}
	if input.PropertyType == "" {
		errs.Add("property_type", "Property type is required")
	}
	if input.CountyID <= 0 {
		errs.Add("county_id", "County is required")
	}
	if input.SubCountyID != nil && subCounties != nil {
		ok := false
		for _, sc := range subCounties {
			if sc.ID == *input.SubCountyID && sc.CountyID == input.CountyID {
				ok = true
				break
			}
		}
		if !ok {
			errs.Add("sub_county_id", "Sub-county does not belong to the selected county")
		}
	}

	return errs.Err()
}

// SelectImages keeps the image files that are under MaxImageBytes and have an
// image/* content type, returning the names of the dropped ones. Selecting
// more than MaxImages in total, counting existing, is a validation error.
func SelectImages(files []entities.ImageUpload, existing int) ([]entities.ImageUpload, []string, error) {
	accepted := make([]entities.ImageUpload, 0, len(files))
	var rejected []string
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") || f.Size() > MaxImageBytes || f.Size() == 0 {
			rejected = append(rejected, f.Filename)
			continue
		}
		accepted = append(accepted, f)
	}

	if existing+len(accepted) > MaxImages {
		return nil, rejected, apperrors.NewValidationError("images", "You can only upload up to 10 images")
	}
	if len(accepted) == 0 {
		return nil, rejected, apperrors.NewValidationError("images", "Select at least one image")
	}
	return accepted, rejected, nil
}

// ValidatePasswordReset checks the reset confirmation form
func ValidatePasswordReset(req entities.PasswordResetRequest) error {
	errs := apperrors.ValidationErrors{}

	if strings.TrimSpace(req.Token) == "" {
		errs.Add("token", "Reset token is required")
	}
	if req.Password == "" {
		errs.Add("password", "New password is required")
	} else if msg := passwordProblem(req.Password); msg != "" {
		errs.Add("password", msg)
	}
	switch {
	case req.ConfirmPassword == "":
		errs.Add("confirm_password", "Please confirm your password")
	case req.ConfirmPassword != req.Password:
		errs.Add("confirm_password", "Passwords do not match")
	}

	return errs.Err()
}

// ValidateEmail checks the forgot-password form
func ValidateEmail(email string) error {
	if msg := emailProblem(email); msg != "" {
		return apperrors.NewValidationError("email", msg)
	}
	return nil
}

// ValidateLogin checks the login form
func ValidateLogin(req entities.LoginRequest) error {
	errs := apperrors.ValidationErrors{}
	if msg := emailProblem(req.Email); msg != "" {
		errs.Add("email", msg)
	}
	if req.Password == "" {
		errs.Add("password", "Password is required")
	}
	return errs.Err()
}

// ValidateRegistration checks the sign-up form. Admin accounts cannot be
// self-registered.
func ValidateRegistration(req entities.RegisterRequest) error {
	errs := apperrors.ValidationErrors{}

	if strings.TrimSpace(req.FirstName) == "" {
		errs.Add("first_name", "First name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		errs.Add("last_name", "Last name is required")
	}
	if msg := emailProblem(req.Email); msg != "" {
		errs.Add("email", msg)
	}
	if msg := passwordProblem(req.Password); msg != "" {
		errs.Add("password", msg)
	}
	switch req.UserType {
	case entities.UserTypeClient, entities.UserTypeAgent:
	default:
		errs.Add("user_type", "Account type must be client or agent")
	}

	return errs.Err()
}

func emailProblem(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "Please enter a valid email address"
	}
	return ""
}

func passwordProblem(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) < minPasswordLength {
		return "Password must be at least 8 characters"
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	}
	return ""
}
