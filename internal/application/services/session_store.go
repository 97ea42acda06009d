package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
)

// SessionGate is the read-only view of the session used to gate features
type SessionGate interface {
	IsAuthenticated() bool
	IsAgent() bool
	IsAdmin() bool
	IsClient() bool

	// Current returns a copy of the session, if any
	Current() (entities.Session, bool)
}

// SessionStore owns the session. The in-memory session always mirrors the
// persisted one: either both token and user are present or neither is.
type SessionStore struct {
	storage providers.SessionStorage
	metrics *observability.Metrics

	mu      sync.RWMutex
	session *entities.Session

	obsMu        sync.Mutex
	observers    map[int]func(*entities.Session)
	nextObserver int
}

var _ SessionGate = (*SessionStore)(nil)

// NewSessionStore creates a logged-out store backed by storage. Call Restore
// to pick up a persisted session.
func NewSessionStore(storage providers.SessionStorage, metrics *observability.Metrics) *SessionStore {
	return &SessionStore{
		storage:   storage,
		metrics:   metrics,
		observers: make(map[int]func(*entities.Session)),
	}
}

// Restore loads the persisted session. A record holding only one of the two
// keys, or a user that does not decode, is cleared and treated as logged out.
func (s *SessionStore) Restore(ctx context.Context) error {
	stored, err := s.storage.Load(ctx)
	if errors.Is(err, providers.ErrNoSession) {
		s.set(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	session, decodeErr := decodeStoredSession(stored)
	if decodeErr != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(decodeErr).
			Msg("discarding damaged persisted session")
		if err := s.storage.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear damaged session: %w", err)
		}
		s.set(nil)
		return nil
	}

	s.set(session)
	return nil
}

// Login persists user and token together and makes them the current session
func (s *SessionStore) Login(ctx context.Context, user entities.User, token string) error {
	if token == "" {
		return errors.New("session token is required")
	}
	if user.ID == "" {
		return errors.New("session user is required")
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}

	s.mu.Lock()
	if err := s.storage.Save(ctx, providers.StoredSession{AuthToken: token, User: string(encoded)}); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	session := &entities.Session{Token: token, User: user}
	s.session = session
	s.mu.Unlock()

	s.notify(session)
	return nil
}

// Logout removes the session. The in-memory session is dropped even when
// clearing the persisted record fails.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	hadSession := s.session != nil
	err := s.storage.Clear(ctx)
	s.session = nil
	s.mu.Unlock()

	if hadSession {
		s.notify(nil)
	}
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Invalidate logs out after the backend rejected the session token
func (s *SessionStore) Invalidate(ctx context.Context, reason string) {
	if !s.IsAuthenticated() {
		return
	}
	observability.LoggerFromContext(ctx).Info().
		Str("reason", reason).
		Msg("session invalidated")
	observability.RecordSessionInvalidation(ctx, s.metrics, reason)

	if err := s.Logout(ctx); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("failed to clear invalidated session")
	}
}

// UpdateUser replaces the stored user of the current session
func (s *SessionStore) UpdateUser(ctx context.Context, user entities.User) error {
	current, ok := s.Current()
	if !ok {
		return errors.New("not logged in")
	}
	return s.Login(ctx, user, current.Token)
}

// Rebind moves the session to storage and clears the record kept by the
// previous storage. The in-memory session is unchanged.
func (s *SessionStore) Rebind(ctx context.Context, storage providers.SessionStorage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		encoded, err := json.Marshal(s.session.User)
		if err != nil {
			return fmt.Errorf("failed to encode session user: %w", err)
		}
		if err := storage.Save(ctx, providers.StoredSession{AuthToken: s.session.Token, User: string(encoded)}); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}
	previous := s.storage
	s.storage = storage
	if err := previous.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear previous session: %w", err)
	}
	return nil
}

// Subscribe registers fn for every committed change. fn receives nil on
// logout. The returned function removes the subscription.
func (s *SessionStore) Subscribe(fn func(*entities.Session)) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, id)
	}
}

// Current returns a copy of the session, if any
func (s *SessionStore) Current() (entities.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return entities.Session{}, false
	}
	return *s.session, true
}

// Token returns the bearer token, or "" when logged out
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// IsAuthenticated reports whether a session exists
func (s *SessionStore) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// IsAgent reports whether the session belongs to an agent
func (s *SessionStore) IsAgent() bool {
	return s.hasRole(entities.UserTypeAgent)
}

// IsAdmin reports whether the session belongs to an admin
func (s *SessionStore) IsAdmin() bool {
	return s.hasRole(entities.UserTypeAdmin)
}

// IsClient reports whether the session belongs to a client
func (s *SessionStore) IsClient() bool {
	return s.hasRole(entities.UserTypeClient)
}

func (s *SessionStore) hasRole(role entities.UserType) bool {
	session, ok := s.Current()
	return ok && session.User.UserType == role
}

func (s *SessionStore) set(session *entities.Session) {
	s.mu.Lock()
	changed := s.session != nil || session != nil
	s.session = session
	s.mu.Unlock()

	if changed {
		s.notify(session)
	}
}

func (s *SessionStore) notify(session *entities.Session) {
	s.obsMu.Lock()
	observers := make([]func(*entities.Session), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range observers {
		if session == nil {
			fn(nil)
			continue
		}
		copied := *session
		fn(&copied)
	}
}

func decodeStoredSession(stored providers.StoredSession) (*entities.Session, error) {
	if stored.AuthToken == "" && stored.User == "" {
		return nil, errors.New("empty session record")
	}
	if stored.AuthToken == "" {
		return nil, errors.New("session record has a user but no token")
	}
	if stored.User == "" {
		return nil, errors.New("session record has a token but no user")
	}

	var user entities.User
	if err := json.Unmarshal([]byte(stored.User), &user); err != nil {
		return nil, fmt.Errorf("session user does not decode: %w", err)
	}
	if user.ID == "" {
		return nil, errors.New("session user has no id")
	}
	return &entities.Session{Token: stored.AuthToken, User: user}, nil
}
