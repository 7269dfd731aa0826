package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StateStore issues single-use OAuth state values bound to a provider.
type StateStore interface {
	Issue(ctx context.Context, provider string) (string, error)
	// Consume reports whether state was issued for provider and not used yet.
	Consume(ctx context.Context, state, provider string) (bool, error)
}

type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ StateStore = (*RedisStateStore)(nil)

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

func (s *RedisStateStore) key(state string) string {
	return "oauth:state:" + state
}

func (s *RedisStateStore) Issue(ctx context.Context, provider string) (string, error) {
	state := uuid.NewString()
	ok, err := s.client.SetNX(ctx, s.key(state), provider, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	if !ok {
		return "", errors.New("oauth state collision")
	}
	return state, nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state, provider string) (bool, error) {
	if state == "" {
		return false, nil
	}
	stored, err := s.client.GetDel(ctx, s.key(state)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume oauth state: %w", err)
	}
	return stored == provider, nil
}

// MemoryStateStore keeps states in process. Used when no Redis is configured.
type MemoryStateStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryState
}

type memoryState struct {
	provider  string
	expiresAt time.Time
}

var _ StateStore = (*MemoryStateStore)(nil)

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryState)}
}

func (s *MemoryStateStore) Issue(_ context.Context, provider string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	state := uuid.NewString()
	s.entries[state] = memoryState{provider: provider, expiresAt: now.Add(s.ttl)}
	return state, nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state, provider string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[state]
	if !ok {
		return false, nil
	}
	delete(s.entries, state)
	return e.provider == provider && !s.now().After(e.expiresAt), nil
}
