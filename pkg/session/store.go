package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/qrmenu/pkg/logger"
)

// Store persists session payloads by id.
type Store interface {
	// Load returns found=false for unknown or expired ids.
	Load(ctx context.Context, id string) (data map[string]interface{}, found bool, err error)
	Save(ctx context.Context, id string, data map[string]interface{}, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

const keyPrefix = "qrmenu:session:"

// ------------------- Redis -------------------

// RedisStore keeps sessions as JSON strings with a TTL.
type RedisStore struct {
	client *redis.Client
}

// Dial connects to Redis and verifies the connection with a ping.
func Dial(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: redis ping: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, id string) (map[string]interface{}, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false, fmt.Errorf("session: decode: %w", err)
	}
	return data, true, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data map[string]interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+id, raw, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

// ------------------- Memory -------------------

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Entries round-trip through JSON so
// values look exactly as they would coming back from Redis.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, id string) (map[string]interface{}, bool, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(e.raw, &data); err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, data map[string]interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	s.mu.Lock()
	s.entries[id] = memoryEntry{raw: raw, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func sessionLog(r *http.Request) *slog.Logger { return logger.WithCtx(r.Context()) }
