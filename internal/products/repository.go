package product

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/artisanmarket/storefront/pkg/db/models"
	"github.com/artisanmarket/storefront/pkg/enums"
	"github.com/artisanmarket/storefront/pkg/pagination"
)

// ListFilter narrows a catalog listing. Zero values do not filter.
type ListFilter struct {
	// Search matches name, description or category, case-insensitively.
	Search     string
	Category   string
	Categories []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Featured   *bool
	IDs        []int64
	ExcludeIDs []int64
	Sort       enums.ProductSort
	Page       pagination.Params
}

// Repository persists catalog products. GetByID and Delete report missing
// products as CodeNotFound errors.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
}
