package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
	"github.com/realtorspace/realtor-space/pkg/utils"
)

// UploadResult is the outcome of one legacy record
type UploadResult struct {
	Name       string
	PropertyID string
	Err        error
}

// UploadSummary aggregates an upload run
type UploadSummary struct {
	Results []UploadResult
}

// Succeeded counts successful uploads
func (s UploadSummary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the failed uploads
func (s UploadSummary) Failed() []UploadResult {
	var out []UploadResult
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// LegacyUploaderConfig configures a bulk upload run
type LegacyUploaderConfig struct {
	// SiteURL serves the legacy relative image paths
	SiteURL string
	// Delay separates consecutive uploads
	Delay time.Duration
	// DefaultCountyID is used when the location names no known county
	DefaultCountyID int
	// DepositRatio is the deposit as a fraction of the rent
	DepositRatio float64
}

// LegacyUploader converts records of the flat legacy catalogue into the
// normalized schema and creates them one by one as an agent
type LegacyUploader struct {
	auth       providers.AuthAPI
	agent      providers.AgentAPI
	listings   providers.ListingAPI
	normalizer *utils.ListingNormalizer
	cfg        LegacyUploaderConfig
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewLegacyUploader creates a new uploader
func NewLegacyUploader(api providers.BackendAPI, normalizer *utils.ListingNormalizer, cfg LegacyUploaderConfig) *LegacyUploader {
	if cfg.DepositRatio <= 0 {
		cfg.DepositRatio = 0.5
	}
	return &LegacyUploader{
		auth:       api,
		agent:      api,
		listings:   api,
		normalizer: normalizer,
		cfg:        cfg,
		sleep:      sleepContext,
	}
}

// Authenticate logs the agent in, registering the account when login fails
func (u *LegacyUploader) Authenticate(ctx context.Context, login entities.LoginRequest, profile entities.RegisterRequest) (string, error) {
	resp, err := u.auth.Login(ctx, login)
	if err == nil {
		return resp.Token, nil
	}
	if apperrors.Is(err, apperrors.ErrorTypeNetwork) {
		return "", err
	}
	observability.LoggerFromContext(ctx).Info().Err(err).Msg("agent login failed, registering")

	profile.Email = login.Email
	profile.Password = login.Password
	profile.UserType = entities.UserTypeAgent
	resp, regErr := u.auth.Register(ctx, profile)
	if regErr != nil {
		return "", fmt.Errorf("login failed (%v) and registration failed: %w", err, regErr)
	}
	return resp.Token, nil
}

// Upload creates every record, continuing past individual failures. The
// returned error is non-nil only when the run itself cannot proceed.
func (u *LegacyUploader) Upload(ctx context.Context, catalog entities.LegacyCatalog, token string) (UploadSummary, error) {
	counties, err := u.listings.FetchCounties(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("counties unavailable, using default county")
	}

	summary := UploadSummary{Results: make([]UploadResult, 0, len(catalog.Properties))}
	for i, legacy := range catalog.Properties {
		if i > 0 && u.cfg.Delay > 0 {
			if err := u.sleep(ctx, u.cfg.Delay); err != nil {
				return summary, err
			}
		}

		input := u.Transform(legacy, counties)
		if !input.PropertyType.IsKnown() {
			observability.LoggerFromContext(ctx).Warn().
				Str("property", legacy.Name).
				Str("category", legacy.Category).
				Str("property_type", string(input.PropertyType)).
				Msg("category maps to an unknown property type")
		}
		result := UploadResult{Name: legacy.Name}
		created, err := u.agent.CreateProperty(ctx, input, token)
		if err != nil {
			result.Err = err
			observability.LoggerFromContext(ctx).Error().Err(err).Str("property", legacy.Name).Msg("upload failed")
			if apperrors.IsUnauthorized(err) {
				summary.Results = append(summary.Results, result)
				return summary, err
			}
		} else {
			result.PropertyID = created.ID
			observability.LoggerFromContext(ctx).Info().Str("property", legacy.Name).Str("id", created.ID).Msg("uploaded")
		}
		summary.Results = append(summary.Results, result)
	}
	return summary, nil
}

// Transform maps a legacy record to the create payload
func (u *LegacyUploader) Transform(legacy entities.LegacyProperty, counties []entities.County) *entities.PropertyInput {
	rent := legacy.Price
	deposit := rent * u.cfg.DepositRatio
	bedrooms := legacy.Bedrooms
	bathrooms := legacy.Bathrooms

	input := &entities.PropertyInput{
		Title:             legacy.Name,
		Description:       legacy.Description,
		PropertyType:      entities.PropertyType(u.normalizer.NormalizeCategory(legacy.Category)),
		Bedrooms:          &bedrooms,
		Bathrooms:         &bathrooms,
		RentAmount:        rent,
		DepositAmount:     &deposit,
		CountyID:          matchCounty(legacy.Location, counties, u.cfg.DefaultCountyID),
		LocationDetails:   legacy.Location,
		IsFurnished:       u.normalizer.IsFurnished(legacy.Amenities),
		IsAvailable:       true,
		UtilitiesIncluded: u.normalizer.IncludedUtilities(legacy.Amenities),
	}
	if legacy.Area > 0 {
		area := legacy.Area
		input.SquareMeters = &area
	}

	amenities := entities.Amenities{}
	for category, items := range u.normalizer.CategorizeAmenities(legacy.Amenities) {
		amenities[category] = items
	}
	if legacy.Management.Name != "" {
		amenities["management"] = map[string]string{
			"name":    legacy.Management.Name,
			"contact": legacy.Management.Contact,
		}
	}
	if legacy.VirtualTour != "" {
		amenities["virtual_tour_url"] = legacy.VirtualTour
	}
	if len(amenities) > 0 {
		input.Amenities = amenities
	}

	for _, img := range legacy.Images {
		input.ImageURLs = append(input.ImageURLs, utils.AbsoluteImageURL(u.cfg.SiteURL, img))
	}
	return input
}

// matchCounty finds the county named by the rightmost comma-separated part of
// a location ("Westlands, Nairobi"), falling back to def
func matchCounty(location string, counties []entities.County, def int) int {
	parts := strings.Split(location, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		name := strings.TrimSpace(parts[i])
		if name == "" {
			continue
		}
		for _, c := range counties {
			if strings.EqualFold(c.Name, name) {
				return c.ID
			}
		}
	}
	return def
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
