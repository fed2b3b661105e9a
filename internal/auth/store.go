package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/redis/go-redis/v9"
)

// SessionKeyPrefix namespaces stored sessions, one key per token id
const SessionKeyPrefix = "pos_auth_session:"

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps signed-in sessions until they expire or are deleted
type SessionStore interface {
	Save(ctx context.Context, id string, session models.Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session models.Session
	expires time.Time
}

// MemoryStore is a process-local SessionStore
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, id string, session models.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[SessionKeyPrefix+id] = memoryEntry{session: session, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (models.Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[SessionKeyPrefix+id]
	s.mu.RUnlock()

	if !ok || !s.now().Before(entry.expires) {
		return models.Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, SessionKeyPrefix+id)
	return nil
}

// RedisStore keeps sessions in Redis with the token lifetime as key TTL
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, id string, session models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, SessionKeyPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (models.Session, error) {
	data, err := s.client.Get(ctx, SessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, SessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
