package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/artisanmarket/storefront/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	require.NoError(t, client.Set(ctx, "artisan:cart:s1", `[{"productId":1}]`, time.Hour))
	value, err := client.Get(ctx, "artisan:cart:s1")
	require.NoError(t, err)
	assert.Equal(t, `[{"productId":1}]`, value)

	require.NoError(t, client.Del(ctx, "artisan:cart:s1"))
	_, err = client.Get(ctx, "artisan:cart:s1")
	assert.True(t, errors.Is(err, ErrNil))
}

func TestSetNXOnlyFirstWins(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "lock", "1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "lock", "1", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIncrWithTTLSetsExpiryOnFirstHit(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	key := client.RateLimitKey("session:ip:1.2.3.4")
	assert.Equal(t, "artisan:rl:session:ip:1.2.3.4", key)

	count, err := client.IncrWithTTL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, time.Minute, mock.ttls[key])

	mock.ttls[key] = 0
	count, err = client.IncrWithTTL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Zero(t, mock.ttls[key])
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	assert.Error(t, client.Ping(ctx))
	assert.Error(t, client.Set(ctx, "k", "v", 0))
	assert.Error(t, client.Del(ctx, "k"))
	assert.NoError(t, client.Close())
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "artisan:idempotency:checkout:abc", client.IdempotencyKey("checkout", "abc"))
	assert.Equal(t, "artisan:cart:sess-1", client.CartKey("sess-1"))
	assert.Equal(t, "artisan:checkout:sess-1", client.CheckoutDraftKey("sess-1"))
	assert.Equal(t, "artisan:submission:tok", client.SubmissionKey(" tok "))
	assert.Equal(t, "artisan:cart", client.CartKey(""))

	custom := &Client{namespace: "staging"}
	assert.Equal(t, "staging:cart:sess-1", custom.CartKey("sess-1"))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://localhost:6379/2",
		PoolSize:    7,
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
}

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
