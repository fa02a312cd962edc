// Package redistest provides an in-memory redis.KV for storage adapter and
// middleware tests.
package redistest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/artisanmarket/storefront/pkg/redis"
)

// KV records values and TTLs in maps. Setting GetErr or SetErr makes the
// matching calls fail.
type KV struct {
	mu     sync.Mutex
	Data   map[string]string
	TTLs   map[string]time.Duration
	GetErr error
	SetErr error
}

var (
	_ redis.KV               = (*KV)(nil)
	_ redis.IdempotencyStore = (*KV)(nil)
	_ redis.RateLimitStore   = (*KV)(nil)
)

func New() *KV {
	return &KV{Data: map[string]string{}, TTLs: map[string]time.Duration{}}
}

func (f *KV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return "", f.GetErr
	}
	v, ok := f.Data[key]
	if !ok {
		return "", redis.ErrNil
	}
	return v, nil
}

func (f *KV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setLocked(key, value, ttl)
}

func (f *KV) setLocked(key string, value any, ttl time.Duration) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Data[key] = fmt.Sprint(value)
	f.TTLs[key] = ttl
	return nil
}

func (f *KV) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Data[key]; ok {
		return false, nil
	}
	if err := f.setLocked(key, value, ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (f *KV) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.Data, k)
		delete(f.TTLs, k)
	}
	return nil
}

// IncrWithTTL keeps counters in Data and sets the TTL on the first hit.
func (f *KV) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return 0, f.SetErr
	}
	count, _ := strconv.ParseInt(f.Data[key], 10, 64)
	count++
	f.Data[key] = strconv.FormatInt(count, 10)
	if count == 1 {
		f.TTLs[key] = ttl
	}
	return count, nil
}

func (f *KV) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (f *KV) RateLimitKey(scope string) string {
	return "rl:" + scope
}
