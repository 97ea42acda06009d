package storage

import (
	"context"
	"sync"
	"time"

	"github.com/realtorspace/realtor-space/internal/domain/providers"
)

// MemorySessions keeps sessions in process memory, keyed by session id. The
// website uses it when Redis is unavailable. Records expire ttl after their
// last save; a ttl of zero keeps them until cleared.
type MemorySessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryRecord
}

type memoryRecord struct {
	session   providers.StoredSession
	expiresAt time.Time
}

// NewMemorySessions creates an empty session table
func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryRecord),
	}
}

// Storage returns the storage of one session id
func (m *MemorySessions) Storage(sessionID string) providers.SessionStorage {
	return &memorySessionStorage{table: m, id: sessionID}
}

// Len returns the number of live sessions
func (m *MemorySessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	return len(m.sessions)
}

func (m *MemorySessions) expiredLocked(record memoryRecord) bool {
	return !record.expiresAt.IsZero() && !m.now().Before(record.expiresAt)
}

func (m *MemorySessions) sweepLocked() {
	for id, record := range m.sessions {
		if m.expiredLocked(record) {
			delete(m.sessions, id)
		}
	}
}

type memorySessionStorage struct {
	table *MemorySessions
	id    string
}

func (s *memorySessionStorage) Load(ctx context.Context) (providers.StoredSession, error) {
	s.table.mu.Lock()
	defer s.table.mu.Unlock()

	record, ok := s.table.sessions[s.id]
	if !ok {
		return providers.StoredSession{}, providers.ErrNoSession
	}
	if s.table.expiredLocked(record) {
		delete(s.table.sessions, s.id)
		return providers.StoredSession{}, providers.ErrNoSession
	}
	return record.session, nil
}

func (s *memorySessionStorage) Save(ctx context.Context, session providers.StoredSession) error {
	s.table.mu.Lock()
	defer s.table.mu.Unlock()

	record := memoryRecord{session: session}
	if s.table.ttl > 0 {
		record.expiresAt = s.table.now().Add(s.table.ttl)
	}
	s.table.sessions[s.id] = record
	return nil
}

func (s *memorySessionStorage) Clear(ctx context.Context) error {
	s.table.mu.Lock()
	defer s.table.mu.Unlock()
	delete(s.table.sessions, s.id)
	return nil
}
