package providers

import (
	"context"
	"errors"
)

// Persisted session keys
const (
	SessionKeyToken = "authToken"
	SessionKeyUser  = "user"
)

// ErrNoSession is returned by Load when nothing is persisted
var ErrNoSession = errors.New("no persisted session")

// StoredSession is the raw persisted form of a session. Either field may be
// empty when the record was damaged outside the application.
type StoredSession struct {
	AuthToken string
	User      string
}

// SessionStorage persists the session keys. Save and Clear write both keys
// in a single operation.
type SessionStorage interface {
	// Load returns the persisted keys or ErrNoSession
	Load(ctx context.Context) (StoredSession, error)

	// Save writes both keys
	Save(ctx context.Context, session StoredSession) error

	// Clear removes both keys
	Clear(ctx context.Context) error
}
