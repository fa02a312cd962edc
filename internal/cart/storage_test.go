package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/storefront/pkg/redis/redistest"
	"github.com/artisanmarket/storefront/pkg/types"
)

type prefixKeys struct{}

func (prefixKeys) CartKey(sessionID string) string { return "artisan:cart:" + sessionID }

func TestRedisStorageRoundTrip(t *testing.T) {
	kv := redistest.New()
	storage, err := NewRedisStorage(kv, prefixKeys{}, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	items, err := storage.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, items)

	saved := []types.LineItem{{
		ProductID:         9,
		Name:              "Quilt",
		Price:             decimal.RequireFromString("149.50"),
		Quantity:          1,
		SelectedVariation: types.Variation{"Size": "Queen"},
	}}
	require.NoError(t, storage.Save(ctx, "s1", saved))
	assert.Equal(t, time.Hour, kv.TTLs["artisan:cart:s1"])
	assert.Contains(t, kv.Data["artisan:cart:s1"], `"productId":9`)

	loaded, err := storage.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Quilt", loaded[0].Name)
	assert.True(t, loaded[0].Price.Equal(saved[0].Price))

	require.NoError(t, storage.Remove(ctx, "s1"))
	_, exists := kv.Data["artisan:cart:s1"]
	assert.False(t, exists)
}

func TestRedisStorageSurfacesErrors(t *testing.T) {
	kv := redistest.New()
	storage, err := NewRedisStorage(kv, prefixKeys{}, 0)
	require.NoError(t, err)

	kv.Data["artisan:cart:s1"] = "{not json"
	_, err = storage.Load(context.Background(), "s1")
	assert.Error(t, err)

	kv.GetErr = errors.New("connection reset")
	_, err = storage.Load(context.Background(), "s1")
	assert.ErrorContains(t, err, "connection reset")

	_, err = NewRedisStorage(nil, prefixKeys{}, 0)
	assert.Error(t, err)
}

func TestMemoryStorageSavesEmptyCartAsEmptyList(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), "s1", nil))
	assert.True(t, storage.Has("s1"))
	items, err := storage.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, items)
}
