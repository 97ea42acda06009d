package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

func TestFileSessionStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	storage := NewFileSessionStorage(path)
	ctx := context.Background()

	_, err := storage.Load(ctx)
	assert.ErrorIs(t, err, providers.ErrNoSession)

	require.NoError(t, storage.Save(ctx, providers.StoredSession{AuthToken: "tok-1", User: `{"id":"u-1"}`}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	stored, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, providers.StoredSession{AuthToken: "tok-1", User: `{"id":"u-1"}`}, stored)

	require.NoError(t, storage.Clear(ctx))
	_, err = storage.Load(ctx)
	assert.ErrorIs(t, err, providers.ErrNoSession)
	require.NoError(t, storage.Clear(ctx))
}

func TestFileSessionStorage_UsesStorageKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	storage := NewFileSessionStorage(path)

	require.NoError(t, storage.Save(context.Background(), providers.StoredSession{AuthToken: "tok-1", User: "{}"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"authToken":"tok-1","user":"{}"}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileSessionStorage_PartialAndDamagedFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	partial := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"authToken":"tok-1"}`), 0o600))
	stored, err := NewFileSessionStorage(partial).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, providers.StoredSession{AuthToken: "tok-1"}, stored)

	damaged := filepath.Join(dir, "damaged.json")
	require.NoError(t, os.WriteFile(damaged, []byte(`{not json`), 0o600))
	stored, err = NewFileSessionStorage(damaged).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, providers.StoredSession{}, stored)
}

func TestMemorySessions_IsolatesSessionIDs(t *testing.T) {
	sessions := NewMemorySessions(0)
	ctx := context.Background()

	a := sessions.Storage("a")
	b := sessions.Storage("b")
	require.NoError(t, a.Save(ctx, providers.StoredSession{AuthToken: "tok-a", User: "{}"}))

	_, err := b.Load(ctx)
	assert.ErrorIs(t, err, providers.ErrNoSession)

	stored, err := sessions.Storage("a").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-a", stored.AuthToken)
	assert.Equal(t, 1, sessions.Len())

	require.NoError(t, a.Clear(ctx))
	assert.Zero(t, sessions.Len())
}

func TestMemorySessions_ExpireAfterTTL(t *testing.T) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewMemorySessions(time.Hour)
	sessions.now = func() time.Time { return clock }
	ctx := context.Background()

	storage := sessions.Storage("a")
	require.NoError(t, storage.Save(ctx, providers.StoredSession{AuthToken: "tok-a", User: "{}"}))

	clock = clock.Add(59 * time.Minute)
	stored, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-a", stored.AuthToken)

	clock = clock.Add(time.Minute)
	_, err = storage.Load(ctx)
	assert.ErrorIs(t, err, providers.ErrNoSession)
	assert.Zero(t, sessions.Len())
}

func TestMemorySessions_SaveExtendsTTL(t *testing.T) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewMemorySessions(time.Hour)
	sessions.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, sessions.Storage("a").Save(ctx, providers.StoredSession{AuthToken: "tok-a"}))
	require.NoError(t, sessions.Storage("b").Save(ctx, providers.StoredSession{AuthToken: "tok-b"}))

	clock = clock.Add(45 * time.Minute)
	require.NoError(t, sessions.Storage("a").Save(ctx, providers.StoredSession{AuthToken: "tok-a2"}))

	clock = clock.Add(30 * time.Minute)
	assert.Equal(t, 1, sessions.Len())
	stored, err := sessions.Storage("a").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-a2", stored.AuthToken)
}
