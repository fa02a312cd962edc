package orders

import (
	"context"

	"github.com/artisanmarket/storefront/pkg/db/models"
	"github.com/artisanmarket/storefront/pkg/pagination"
)

// ListFilter narrows an order listing. Zero values do not filter.
type ListFilter struct {
	CustomerEmail string
	Page          pagination.Params
}

// Repository persists orders. Lookups and deletes report missing orders as
// CodeNotFound; Create reports a duplicate order id or idempotency key as
// CodeConflict.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, orderID string) error
}
