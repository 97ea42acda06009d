package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "root" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		if r.URL.Path != "/v1/secret/data/realtor-space/web" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_KVv2(t *testing.T) {
	srv := vaultServer(t, `{"data":{"data":{"TYPESENSE_API_KEY":"ts-key","REDIS_DB":2,"DEBUG":true,"EMPTY":null}}}`)

	values, err := Fetch(context.Background(), VaultConfig{Addr: srv.URL, Token: "root", Mount: "secret", Path: "realtor-space/web", KVVersion: 2})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TYPESENSE_API_KEY": "ts-key", "REDIS_DB": "2", "DEBUG": "true", "EMPTY": ""}, values)
}

func TestFetch_Errors(t *testing.T) {
	srv := vaultServer(t, `{"data":{}}`)
	base := VaultConfig{Addr: srv.URL, Token: "root", Mount: "secret", Path: "realtor-space/web", KVVersion: 2}

	_, err := Fetch(context.Background(), base)
	assert.ErrorContains(t, err, "missing data")

	denied := base
	denied.Token = "nope"
	_, err = Fetch(context.Background(), denied)
	assert.ErrorContains(t, err, "403")

	incomplete := base
	incomplete.Addr = ""
	_, err = Fetch(context.Background(), incomplete)
	assert.ErrorContains(t, err, "incomplete")
}

func TestApplyToEnv(t *testing.T) {
	srv := vaultServer(t, `{"data":{"data":{"TYPESENSE_API_KEY":"ts-key","REDIS_PASSWORD":"vault-pass","UNLISTED":"x"}}}`)
	t.Setenv("TYPESENSE_API_KEY", "")
	t.Setenv("REDIS_PASSWORD", "from-env")
	t.Setenv("UNLISTED", "")

	result, err := ApplyToEnv(context.Background(), VaultConfig{
		Enabled: true, Addr: srv.URL, Token: "root", Mount: "secret", Path: "realtor-space/web",
		KVVersion: 2, Keys: DefaultKeys,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"TYPESENSE_API_KEY"}, result.Loaded)
	assert.Equal(t, []string{"REDIS_PASSWORD"}, result.Skipped)
	assert.Equal(t, "ts-key", os.Getenv("TYPESENSE_API_KEY"))
	assert.Equal(t, "from-env", os.Getenv("REDIS_PASSWORD"))
	assert.Empty(t, os.Getenv("UNLISTED"))
}

func TestApplyToEnv_Disabled(t *testing.T) {
	result, err := ApplyToEnv(context.Background(), VaultConfig{Path: "realtor-space/web"})

	require.NoError(t, err)
	assert.Empty(t, result.Loaded)
}

func TestSecretURL(t *testing.T) {
	u, err := secretURL("http://vault:8200/", "/secret/", "/realtor-space/web", 1)
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/realtor-space/web", u)

	u, err = secretURL("http://vault:8200", "secret", "realtor-space/web", 2)
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/data/realtor-space/web", u)
}

func TestVaultConfigFromEnv(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "TRUE")
	t.Setenv("VAULT_PATH", "")
	t.Setenv("VAULT_KV_VERSION", "1")
	t.Setenv("VAULT_KEYS", "A,B")

	cfg := VaultConfigFromEnv("indexer")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "realtor-space/indexer", cfg.Path)
	assert.Equal(t, 1, cfg.KVVersion)
	assert.Equal(t, []string{"A", "B"}, cfg.Keys)
}
