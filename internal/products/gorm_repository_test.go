package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/storefront/pkg/db/models"
	"github.com/artisanmarket/storefront/pkg/enums"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/pagination"
	"github.com/artisanmarket/storefront/pkg/types"
)

func TestGormRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository(openProductDB(t))

	mug := seedProduct(t, repo, "Stoneware Mug", "Ceramics", "28.00", true)
	bowl := seedProduct(t, repo, "Serving Bowl", "Ceramics", "64.00", false)
	scarf := seedProduct(t, repo, "Wool Scarf", "Textiles", "45.00", true)

	cases := []struct {
		name   string
		filter ListFilter
		want   []int64
	}{
		{name: "default newest first", filter: ListFilter{}, want: []int64{scarf.ID, bowl.ID, mug.ID}},
		{name: "search is case insensitive", filter: ListFilter{Search: "MUG"}, want: []int64{mug.ID}},
		{name: "search matches category", filter: ListFilter{Search: "textile"}, want: []int64{scarf.ID}},
		{name: "category ignores case", filter: ListFilter{Category: "ceramics"}, want: []int64{bowl.ID, mug.ID}},
		{name: "featured only", filter: ListFilter{Featured: ptr(true)}, want: []int64{scarf.ID, mug.ID}},
		{
			name:   "price range",
			filter: ListFilter{MinPrice: ptr(decimal.NewFromInt(30)), MaxPrice: ptr(decimal.NewFromInt(50))},
			want:   []int64{scarf.ID},
		},
		{name: "price low to high", filter: ListFilter{Sort: enums.ProductSortPriceLow}, want: []int64{mug.ID, scarf.ID, bowl.ID}},
		{name: "price high to low", filter: ListFilter{Sort: enums.ProductSortPriceHigh}, want: []int64{bowl.ID, scarf.ID, mug.ID}},
		{name: "exclusions", filter: ListFilter{Categories: []string{"Ceramics"}, ExcludeIDs: []int64{mug.ID}}, want: []int64{bowl.ID}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := repo.List(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, productIDs(items))
			assert.Equal(t, int64(len(tc.want)), total)
		})
	}
}

func TestGormRepositoryListPaginates(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository(openProductDB(t))
	for _, name := range []string{"a", "b", "c"} {
		seedProduct(t, repo, name, "Prints", "10.00", false)
	}

	items, total, err := repo.List(ctx, ListFilter{Page: pagination.Params{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(3), total)
}

func TestGormRepositoryRoundTripsJSONColumns(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository(openProductDB(t))
	p := seedProduct(t, repo, "Tote", "Textiles", "19.99", false)

	p.Variations = []types.VariationOption{{Type: "Color", Options: []string{"Natural", "Indigo"}}}
	require.NoError(t, repo.Update(ctx, &p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Images, got.Images)
	assert.Equal(t, p.Variations, got.Variations)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("19.99")))
}

func TestGormRepositoryMissingRows(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository(openProductDB(t))

	_, err := repo.GetByID(ctx, 42)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = repo.Update(ctx, &models.Product{ID: 42, Name: "ghost", Category: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = repo.Delete(ctx, 42)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func ptr[T any](v T) *T { return &v }
