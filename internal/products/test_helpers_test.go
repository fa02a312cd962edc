package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/artisanmarket/storefront/pkg/db/dbtest"
	"github.com/artisanmarket/storefront/pkg/db/models"
)

func openProductDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, &models.Product{})
}

func seedProduct(t *testing.T, repo Repository, name, category, price string, featured bool) models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name + " handmade in small batches",
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Images:      []string{"https://cdn.test/" + name + ".jpg"},
		Featured:    featured,
		Stock:       5,
		Rating:      4.5,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return *p
}

func productIDs(products []models.Product) []int64 {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func noShuffle(int, func(i, j int)) {}
