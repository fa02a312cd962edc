package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/artisanmarket/storefront/pkg/redis"
	"github.com/artisanmarket/storefront/pkg/types"
)

// Storage persists a session's cart snapshot as a whole. Load returns an
// empty slice and no error when nothing is stored.
type Storage interface {
	Load(ctx context.Context, sessionID string) ([]types.LineItem, error)
	Save(ctx context.Context, sessionID string, items []types.LineItem) error
	Remove(ctx context.Context, sessionID string) error
}

func encodeSnapshot(items []types.LineItem) (string, error) {
	if items == nil {
		items = []types.LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart snapshot: %w", err)
	}
	return string(payload), nil
}

func decodeSnapshot(raw string) ([]types.LineItem, error) {
	var items []types.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, nil
}

// MemoryStorage keeps serialized snapshots in process. Used by tests and
// single-instance development runs.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Load(_ context.Context, sessionID string) ([]types.LineItem, error) {
	m.mu.Lock()
	raw, ok := m.data[sessionID]
	m.mu.Unlock()
	if !ok {
		return []types.LineItem{}, nil
	}
	return decodeSnapshot(raw)
}

func (m *MemoryStorage) Save(_ context.Context, sessionID string, items []types.LineItem) error {
	raw, err := encodeSnapshot(items)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = raw
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

// Has reports whether a snapshot is stored for the session.
func (m *MemoryStorage) Has(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[sessionID]
	return ok
}

type cartKeyer interface {
	CartKey(sessionID string) string
}

// RedisStorage stores each session's snapshot as JSON under its cart key.
type RedisStorage struct {
	kv   redis.KV
	keys cartKeyer
	ttl  time.Duration
}

// NewRedisStorage builds redis-backed cart storage. ttl <= 0 keeps carts
// until they are cleared.
func NewRedisStorage(kv redis.KV, keys cartKeyer, ttl time.Duration) (*RedisStorage, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis kv required")
	}
	if keys == nil {
		return nil, fmt.Errorf("cart key builder required")
	}
	return &RedisStorage{kv: kv, keys: keys, ttl: ttl}, nil
}

func (r *RedisStorage) Load(ctx context.Context, sessionID string) ([]types.LineItem, error) {
	raw, err := r.kv.Get(ctx, r.keys.CartKey(sessionID))
	if errors.Is(err, redis.ErrNil) {
		return []types.LineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return decodeSnapshot(raw)
}

func (r *RedisStorage) Save(ctx context.Context, sessionID string, items []types.LineItem) error {
	raw, err := encodeSnapshot(items)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, r.keys.CartKey(sessionID), raw, r.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *RedisStorage) Remove(ctx context.Context, sessionID string) error {
	if err := r.kv.Del(ctx, r.keys.CartKey(sessionID)); err != nil {
		return fmt.Errorf("remove cart: %w", err)
	}
	return nil
}
