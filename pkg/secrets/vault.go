package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultKeys are the settings worth keeping out of .env files: backend
// credentials and infrastructure passwords.
var DefaultKeys = []string{
	"TYPESENSE_API_KEY",
	"REDIS_PASSWORD",
	"UPLOAD_AGENT_EMAIL",
	"UPLOAD_AGENT_PASSWORD",
}

// VaultConfig locates a KV secret in HashiCorp Vault
type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration

	// Keys limits which secret fields are exported; empty exports all
	Keys []string

	// Overwrite replaces variables that are already set
	Overwrite bool
}

// VaultResult reports what ApplyToEnv exported
type VaultResult struct {
	Path    string
	Loaded  []string
	Skipped []string
}

// VaultConfigFromEnv reads VAULT_* variables. The secret path defaults to
// realtor-space/<app>.
func VaultConfigFromEnv(app string) VaultConfig {
	cfg := VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     envOr("VAULT_MOUNT", "secret"),
		Path:      envOr("VAULT_PATH", "realtor-space/"+app),
		KVVersion: 2,
		Timeout:   5 * time.Second,
		Keys:      DefaultKeys,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
	}
	if v, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil {
		cfg.KVVersion = v
	}
	if v, err := strconv.Atoi(os.Getenv("VAULT_TIMEOUT_MS")); err == nil && v > 0 {
		cfg.Timeout = time.Duration(v) * time.Millisecond
	}
	if keys := os.Getenv("VAULT_KEYS"); keys != "" {
		cfg.Keys = strings.Split(keys, ",")
	}
	return cfg
}

// Fetch reads the secret's fields as strings
func Fetch(ctx context.Context, cfg VaultConfig) (map[string]string, error) {
	if cfg.Addr == "" || cfg.Token == "" || cfg.Path == "" {
		return nil, errors.New("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN, VAULT_PATH)")
	}
	url, err := secretURL(cfg.Addr, cfg.Mount, cfg.Path, cfg.KVVersion)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	resp, err := (&http.Client{Timeout: cfg.Timeout}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("vault request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vault fetch failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode vault response: %w", err)
	}
	data := payload.Data
	if cfg.KVVersion != 1 {
		inner, ok := data["data"]
		if !ok {
			return nil, errors.New("vault response missing data for KV v2")
		}
		data = nil
		if err := json.Unmarshal(inner, &data); err != nil {
			return nil, fmt.Errorf("failed to decode vault data: %w", err)
		}
	}
	if data == nil {
		return nil, errors.New("vault response missing data")
	}

	out := make(map[string]string, len(data))
	for key, raw := range data {
		out[key] = stringValue(raw)
	}
	return out, nil
}

// ApplyToEnv exports the secret's fields as environment variables so that
// config.Load picks them up. It does nothing when Vault is disabled.
func ApplyToEnv(ctx context.Context, cfg VaultConfig) (VaultResult, error) {
	result := VaultResult{Path: cfg.Path}
	if !cfg.Enabled {
		return result, nil
	}

	values, err := Fetch(ctx, cfg)
	if err != nil {
		return result, err
	}

	for key, value := range values {
		if len(cfg.Keys) > 0 && !slices.Contains(cfg.Keys, key) {
			continue
		}
		if !cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return result, err
		}
		result.Loaded = append(result.Loaded, key)
	}
	slices.Sort(result.Loaded)
	slices.Sort(result.Skipped)

	log.Info().Str("path", cfg.Path).Strs("loaded", result.Loaded).Int("skipped", len(result.Skipped)).Msg("applied vault secrets")
	return result, nil
}

func secretURL(addr, mount, path string, kvVersion int) (string, error) {
	addr = strings.TrimRight(addr, "/")
	mount = strings.Trim(mount, "/")
	path = strings.TrimLeft(path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount and path must be set")
	}
	if kvVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

// stringValue renders a JSON value the way it would be written in a .env file
func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
