package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/artisanmarket/storefront/pkg/redis"
)

// DraftStore keeps one draft per session. Load returns nil, nil when the
// session has no draft.
type DraftStore interface {
	Load(ctx context.Context, sessionID string) (*Draft, error)
	Save(ctx context.Context, sessionID string, draft *Draft) error
	Discard(ctx context.Context, sessionID string) error
}

// MemoryDraftStore keeps drafts in process.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string][]byte
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: map[string][]byte{}}
}

func (m *MemoryDraftStore) Load(_ context.Context, sessionID string) (*Draft, error) {
	m.mu.Lock()
	raw, ok := m.drafts[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (m *MemoryDraftStore) Save(_ context.Context, sessionID string, draft *Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	m.mu.Lock()
	m.drafts[sessionID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryDraftStore) Discard(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.drafts, sessionID)
	m.mu.Unlock()
	return nil
}

type draftKeyer interface {
	CheckoutDraftKey(sessionID string) string
}

// RedisDraftStore stores drafts as JSON with a sliding TTL.
type RedisDraftStore struct {
	kv   redis.KV
	keys draftKeyer
	ttl  time.Duration
}

func NewRedisDraftStore(kv redis.KV, keys draftKeyer, ttl time.Duration) (*RedisDraftStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis kv required")
	}
	if keys == nil {
		return nil, fmt.Errorf("draft key builder required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("draft ttl must be positive")
	}
	return &RedisDraftStore{kv: kv, keys: keys, ttl: ttl}, nil
}

func (r *RedisDraftStore) Load(ctx context.Context, sessionID string) (*Draft, error) {
	raw, err := r.kv.Get(ctx, r.keys.CheckoutDraftKey(sessionID))
	if errors.Is(err, redis.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (r *RedisDraftStore) Save(ctx context.Context, sessionID string, draft *Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := r.kv.Set(ctx, r.keys.CheckoutDraftKey(sessionID), string(raw), r.ttl); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (r *RedisDraftStore) Discard(ctx context.Context, sessionID string) error {
	if err := r.kv.Del(ctx, r.keys.CheckoutDraftKey(sessionID)); err != nil {
		return fmt.Errorf("discard draft: %w", err)
	}
	return nil
}
