package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/artisanmarket/storefront/pkg/redis"
)

// SubmissionGuard admits one in-flight order submission per token.
type SubmissionGuard interface {
	// Acquire reports false when the token is already being submitted.
	Acquire(ctx context.Context, token string) (bool, error)
	Release(ctx context.Context, token string) error
}

// MemoryGuard is an in-process guard whose locks expire after ttl.
type MemoryGuard struct {
	mu    sync.Mutex
	held  map[string]time.Time
	ttl   time.Duration
	clock func() time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{held: map[string]time.Time{}, ttl: ttl, clock: time.Now}
}

func (g *MemoryGuard) Acquire(_ context.Context, token string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock()
	if expires, ok := g.held[token]; ok && (g.ttl <= 0 || now.Before(expires)) {
		return false, nil
	}
	g.held[token] = now.Add(g.ttl)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, token string) error {
	g.mu.Lock()
	delete(g.held, token)
	g.mu.Unlock()
	return nil
}

type submissionKeyer interface {
	SubmissionKey(token string) string
}

// RedisGuard takes the lock with SET NX so it holds across API replicas.
// The TTL frees tokens left behind by a crashed submission.
type RedisGuard struct {
	kv   redis.KV
	keys submissionKeyer
	ttl  time.Duration
}

func NewRedisGuard(kv redis.KV, keys submissionKeyer, ttl time.Duration) (*RedisGuard, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis kv required")
	}
	if keys == nil {
		return nil, fmt.Errorf("submission key builder required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("submission ttl must be positive")
	}
	return &RedisGuard{kv: kv, keys: keys, ttl: ttl}, nil
}

func (g *RedisGuard) Acquire(ctx context.Context, token string) (bool, error) {
	ok, err := g.kv.SetNX(ctx, g.keys.SubmissionKey(token), "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire submission lock: %w", err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, token string) error {
	if err := g.kv.Del(ctx, g.keys.SubmissionKey(token)); err != nil {
		return fmt.Errorf("release submission lock: %w", err)
	}
	return nil
}
