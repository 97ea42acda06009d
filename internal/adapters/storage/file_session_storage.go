package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

// FileSessionStorage persists the session as a JSON object holding the
// authToken and user keys. Writes go to a temporary file that is renamed
// over the target, so both keys change together.
type FileSessionStorage struct {
	path string
	mu   sync.Mutex
}

var _ providers.SessionStorage = (*FileSessionStorage)(nil)

// NewFileSessionStorage creates a storage backed by path
func NewFileSessionStorage(path string) *FileSessionStorage {
	return &FileSessionStorage{path: path}
}

// Path returns the session file path
func (s *FileSessionStorage) Path() string {
	return s.path
}

// Load reads the session file
func (s *FileSessionStorage) Load(ctx context.Context) (providers.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return providers.StoredSession{}, providers.ErrNoSession
	}
	if err != nil {
		return providers.StoredSession{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var record map[string]string
	if err := json.Unmarshal(data, &record); err != nil {
		// An unreadable file is reported as a record with neither key so the
		// caller discards it.
		return providers.StoredSession{}, nil
	}
	stored := providers.StoredSession{
		AuthToken: record[providers.SessionKeyToken],
		User:      record[providers.SessionKeyUser],
	}
	if stored.AuthToken == "" && stored.User == "" {
		return providers.StoredSession{}, providers.ErrNoSession
	}
	return stored, nil
}

// Save replaces the session file
func (s *FileSessionStorage) Save(ctx context.Context, session providers.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(map[string]string{
		providers.SessionKeyToken: session.AuthToken,
		providers.SessionKeyUser:  session.User,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set session file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear removes the session file
func (s *FileSessionStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
