package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/cli"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/clients/realtorapi"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	"github.com/realtorspace/realtor-space/pkg/config"
	"github.com/realtorspace/realtor-space/pkg/secrets"
	"github.com/realtorspace/realtor-space/pkg/utils"
)

// options configures one upload run
type options struct {
	File       string
	SiteURL    string
	Delay      time.Duration
	CountyID   int
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      string
	Vocabulary string
}

func main() {
	var opts options
	var verbose bool
	flag.StringVar(&opts.File, "file", "properties.json", "legacy catalogue to upload")
	flag.StringVar(&opts.SiteURL, "site-url", "https://realtorspace.co.ke", "site serving the legacy image paths")
	flag.DurationVar(&opts.Delay, "delay", time.Second, "pause between uploads")
	flag.IntVar(&opts.CountyID, "county", 47, "county id used when a location names no known county")
	flag.StringVar(&opts.Email, "email", "", "agent email (default $UPLOAD_AGENT_EMAIL)")
	flag.StringVar(&opts.FirstName, "first-name", "Realtor", "agent first name, used when registering")
	flag.StringVar(&opts.LastName, "last-name", "Space", "agent last name, used when registering")
	flag.StringVar(&opts.Phone, "phone", "", "agent phone number, used when registering")
	flag.StringVar(&opts.Vocabulary, "vocabulary", "", "listing normalization config (default $LISTING_NORMALIZATION_CONFIG)")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()

	observability.InitCLILogger(os.Stderr, verbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := secrets.ApplyToEnv(ctx, secrets.VaultConfigFromEnv("upload-properties")); err != nil {
		log.Warn().Err(err).Msg("failed to load secrets from vault")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if opts.Email == "" {
		opts.Email = os.Getenv("UPLOAD_AGENT_EMAIL")
	}
	opts.Password = os.Getenv("UPLOAD_AGENT_PASSWORD")
	prompt := cli.NewPrompter(os.Stdin, os.Stderr)
	if opts.Email == "" {
		if opts.Email, err = prompt.Line("Agent email", ""); err != nil {
			log.Fatal().Err(err).Msg("agent email is required")
		}
	}
	if opts.Password == "" {
		if opts.Password, err = prompt.Password("Agent password"); err != nil {
			log.Fatal().Err(err).Msg("agent password is required")
		}
	}

	normalizer := utils.DefaultListingNormalizer()
	vocabulary := opts.Vocabulary
	if vocabulary == "" {
		vocabulary = utils.GetConfigPath()
	}
	if loaded, err := utils.NewListingNormalizer(vocabulary); err == nil {
		normalizer = loaded
	} else if opts.Vocabulary != "" {
		log.Fatal().Err(err).Str("path", vocabulary).Msg("failed to load listing vocabulary")
	} else {
		log.Debug().Err(err).Msg("using built-in listing vocabulary")
	}

	client := realtorapi.NewClient(cfg.API.BaseURL, realtorapi.WithTimeout(cfg.API.Timeout))
	if _, err := run(ctx, client, normalizer, opts, os.Stdout); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// run uploads the catalogue in opts.File and prints the summary to out
func run(ctx context.Context, api providers.BackendAPI, normalizer *utils.ListingNormalizer, opts options, out io.Writer) (services.UploadSummary, error) {
	catalog, err := readCatalog(opts.File)
	if err != nil {
		return services.UploadSummary{}, err
	}
	fmt.Fprintf(out, "Found %d properties in %s\n", len(catalog.Properties), opts.File)

	uploader := services.NewLegacyUploader(api, normalizer, services.LegacyUploaderConfig{
		SiteURL:         opts.SiteURL,
		Delay:           opts.Delay,
		DefaultCountyID: opts.CountyID,
	})

	token, err := uploader.Authenticate(ctx,
		entities.LoginRequest{Email: opts.Email, Password: opts.Password},
		entities.RegisterRequest{FirstName: opts.FirstName, LastName: opts.LastName, PhoneNumber: opts.Phone},
	)
	if err != nil {
		return services.UploadSummary{}, fmt.Errorf("agent authentication failed: %w", err)
	}
	fmt.Fprintf(out, "Authenticated as %s\n", opts.Email)

	summary, err := uploader.Upload(ctx, catalog, token)
	printSummary(out, summary)
	return summary, err
}

func readCatalog(path string) (entities.LegacyCatalog, error) {
	var catalog entities.LegacyCatalog
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &catalog); err != nil {
		return catalog, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(catalog.Properties) == 0 {
		return catalog, errors.New(path + " contains no properties")
	}
	return catalog, nil
}

func printSummary(out io.Writer, summary services.UploadSummary) {
	failed := summary.Failed()
	fmt.Fprintf(out, "\nUpload summary\n  succeeded: %d\n  failed: %d\n", summary.Succeeded(), len(failed))
	for _, r := range failed {
		fmt.Fprintf(out, "  - %s: %v\n", r.Name, r.Err)
	}
}
