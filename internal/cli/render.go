package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

// FormatRent renders an amount the way the listing cards do ("KES 30,000")
func FormatRent(amount float64) string {
	whole := strconv.FormatInt(int64(amount), 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "KES " + b.String()
}

// PrintProperties writes one row per listing
func PrintProperties(w io.Writer, properties []entities.Property) error {
	if len(properties) == 0 {
		_, err := fmt.Fprintln(w, "No properties found matching your criteria.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tRENT\tBEDS\tLOCATION")
	for _, p := range properties {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.Title, p.PropertyType, FormatRent(p.RentAmount), p.Bedrooms, location(&p))
	}
	return tw.Flush()
}

// PrintProperty writes the detail view of a listing
func PrintProperty(w io.Writer, p *entities.Property) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Title:\t%s\n", p.Title)
	fmt.Fprintf(tw, "Type:\t%s\n", p.PropertyType)
	fmt.Fprintf(tw, "Rent:\t%s / month\n", FormatRent(p.RentAmount))
	if p.DepositAmount != nil {
		fmt.Fprintf(tw, "Deposit:\t%s\n", FormatRent(*p.DepositAmount))
	}
	fmt.Fprintf(tw, "Bedrooms:\t%d\n", p.Bedrooms)
	fmt.Fprintf(tw, "Bathrooms:\t%d\n", p.Bathrooms)
	if p.SquareMeters > 0 {
		fmt.Fprintf(tw, "Area:\t%g m²\n", p.SquareMeters)
	}
	fmt.Fprintf(tw, "Location:\t%s\n", location(p))
	fmt.Fprintf(tw, "Furnished:\t%t\n", p.IsFurnished)
	fmt.Fprintf(tw, "Available:\t%t\n", p.IsAvailable)
	for _, key := range []entities.AmenityKey{
		entities.AmenitySecurity,
		entities.AmenityUtilities,
		entities.AmenityKitchen,
		entities.AmenityBathroom,
		entities.AmenityOutdoor,
		entities.AmenityFlooring,
		entities.AmenityFacilities,
		entities.AmenityLocation,
	} {
		if items := p.Amenities.Items(key); len(items) > 0 {
			fmt.Fprintf(tw, "%s:\t%s\n", strings.ToUpper(string(key[:1]))+string(key[1:]), strings.Join(items, ", "))
		}
	}
	for _, key := range p.Amenities.Extra() {
		if items := p.Amenities.Items(entities.AmenityKey(key)); len(items) > 0 {
			fmt.Fprintf(tw, "%s:\t%s\n", key, strings.Join(items, ", "))
		}
	}
	if img, ok := p.PrimaryImage(); ok {
		url := img.SecureURL
		if url == "" {
			url = img.ImageURL
		}
		fmt.Fprintf(tw, "Image:\t%s\n", url)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p.Description != "" {
		_, err := fmt.Fprintf(w, "\n%s\n", p.Description)
		return err
	}
	return nil
}

// PrintUsers writes one row per account
func PrintUsers(w io.Writer, users []entities.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No agents found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tAPPROVED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", u.ID, u.FullName(), u.Email, u.IsApproved)
	}
	return tw.Flush()
}

func location(p *entities.Property) string {
	var parts []string
	if p.LocationDetails != "" {
		parts = append(parts, p.LocationDetails)
	}
	if p.SubCounty != nil && p.SubCounty.Name != "" {
		parts = append(parts, p.SubCounty.Name)
	}
	if p.County != nil && p.County.Name != "" {
		parts = append(parts, p.County.Name)
	}
	return strings.Join(parts, ", ")
}

// PrintCounties writes one row per county
func PrintCounties(w io.Writer, counties []entities.County) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOUNTY")
	for _, c := range counties {
		fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}

// PrintSubCounties writes one row per sub-county
func PrintSubCounties(w io.Writer, subCounties []entities.SubCounty) error {
	if len(subCounties) == 0 {
		_, err := fmt.Fprintln(w, "No sub-counties found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUB-COUNTY")
	for _, sc := range subCounties {
		fmt.Fprintf(tw, "%d\t%s\n", sc.ID, sc.Name)
	}
	return tw.Flush()
}

// PrintError writes the user-facing message of err, one line per invalid
// field for form errors.
func PrintError(w io.Writer, err error) {
	var fields apperrors.ValidationErrors
	if errors.As(err, &fields) && !fields.Empty() {
		for _, f := range fields.Fields() {
			fmt.Fprintf(w, "%s: %s\n", f.Field, f.Message)
		}
		return
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintln(w, apperrors.UserMessage(err))
}
