package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/realtorspace/realtor-space/internal/domain/providers"
	redisclient "github.com/realtorspace/realtor-space/internal/infrastructure/clients/redis"
)

const sessionKeyPrefix = "rs:session:"

// RedisSessions stores website sessions in Redis, one key pair per session id
type RedisSessions struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisSessions creates a new Redis session table. Both keys of a session
// expire ttl after the last write.
func NewRedisSessions(client *redisclient.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

// Storage returns the storage of one session id
func (r *RedisSessions) Storage(sessionID string) providers.SessionStorage {
	return &RedisSessionStorage{
		client:   r.client.Client(),
		tokenKey: sessionKey(sessionID, providers.SessionKeyToken),
		userKey:  sessionKey(sessionID, providers.SessionKeyUser),
		ttl:      r.ttl,
	}
}

func sessionKey(sessionID, name string) string {
	return sessionKeyPrefix + sessionID + ":" + name
}

// RedisSessionStorage implements SessionStorage for one session id. Save and
// Clear run in a MULTI/EXEC transaction.
type RedisSessionStorage struct {
	client   redis.UniversalClient
	tokenKey string
	userKey  string
	ttl      time.Duration
}

var _ providers.SessionStorage = (*RedisSessionStorage)(nil)

// Load reads both keys
func (s *RedisSessionStorage) Load(ctx context.Context) (providers.StoredSession, error) {
	values, err := s.client.MGet(ctx, s.tokenKey, s.userKey).Result()
	if err != nil {
		return providers.StoredSession{}, fmt.Errorf("failed to load session: %w", err)
	}

	token, _ := values[0].(string)
	user, _ := values[1].(string)
	if token == "" && user == "" {
		return providers.StoredSession{}, providers.ErrNoSession
	}
	return providers.StoredSession{AuthToken: token, User: user}, nil
}

// Save writes both keys
func (s *RedisSessionStorage) Save(ctx context.Context, session providers.StoredSession) error {
	if session.AuthToken == "" || session.User == "" {
		return errors.New("session token and user are both required")
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey, session.AuthToken, s.ttl)
		pipe.Set(ctx, s.userKey, session.User, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes both keys
func (s *RedisSessionStorage) Clear(ctx context.Context) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.tokenKey, s.userKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
