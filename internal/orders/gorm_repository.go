package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/artisanmarket/storefront/internal/repo"
	"github.com/artisanmarket/storefront/pkg/db"
	"github.com/artisanmarket/storefront/pkg/db/models"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/types"
)

type gormRepository struct {
	repo.Base
}

// NewGormRepository builds an order repository over the local orders table.
func NewGormRepository(conn *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(conn)}
}

func (r *gormRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.DB(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already exists")
		}
		return err
	}
	return nil
}

func (r *gormRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	return r.first(ctx, "order_id = ?", orderID, "order "+orderID+" not found")
}

func (r *gormRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	return r.first(ctx, "idempotency_key = ?", key, "no order for idempotency key")
}

func (r *gormRepository) first(ctx context.Context, where string, arg any, missing string) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).Where(where, arg).First(&order).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, missing)
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	q := r.DB(ctx).Model(&models.Order{})
	if email := types.NormalizeEmail(filter.CustomerEmail); email != "" {
		q = q.Where("LOWER(customer_email) = ?", email)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var orders []models.Order
	err := q.Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *gormRepository) Update(ctx context.Context, order *models.Order) error {
	res := r.DB(ctx).Model(order).Select("*").Omit("created_at").Updates(order)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", order.OrderID)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, orderID string) error {
	res := r.DB(ctx).Where("order_id = ?", orderID).Delete(&models.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", orderID)
	}
	return nil
}
