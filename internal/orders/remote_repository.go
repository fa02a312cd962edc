package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/artisanmarket/storefront/pkg/db/models"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/records"
	"github.com/artisanmarket/storefront/pkg/types"
)

var orderFields = records.Fields(
	"Id", "orderId", "items", "subtotal", "shipping", "tax", "total",
	"shippingAddress", "billingAddress", "paymentMethod", "customerEmail",
	"isGuest", "status", "idempotencyKey", "estimatedDelivery", "createdAt", "updatedAt",
)

type remoteRepository struct {
	store records.Store
}

// NewRemoteRepository maps orders onto the record service's order_c collection.
// The record service enforces no uniqueness, so Create checks the order id
// and idempotency key before writing.
func NewRemoteRepository(store records.Store) Repository {
	return &remoteRepository{store: store}
}

func (r *remoteRepository) Create(ctx context.Context, order *models.Order) error {
	if _, err := r.GetByOrderID(ctx, order.OrderID); err == nil {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "order %s already exists", order.OrderID)
	} else if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return err
	}
	if order.IdempotencyKey != nil {
		if _, err := r.GetByIdempotencyKey(ctx, *order.IdempotencyKey); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already exists for idempotency key")
		} else if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return err
		}
	}

	raw, err := r.store.Create(ctx, records.CollectionOrders, orderRecord(order, false))
	if err != nil {
		return err
	}
	return decodeOrder(raw, order)
}

func (r *remoteRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	return r.first(ctx, records.Eq("orderId", orderID), "order "+orderID+" not found")
}

func (r *remoteRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	return r.first(ctx, records.Eq("idempotencyKey", key), "no order for idempotency key")
}

func (r *remoteRepository) first(ctx context.Context, cond records.Condition, missing string) (*models.Order, error) {
	res, err := r.store.Fetch(ctx, records.CollectionOrders, records.Query{
		Fields:     orderFields,
		Where:      []records.Condition{cond},
		PagingInfo: &records.Paging{Limit: 1},
	})
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := json.Unmarshal(res.Data, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, missing)
	}
	return &orders[0], nil
}

func (r *remoteRepository) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	q := records.Query{
		Fields:  orderFields,
		OrderBy: []records.OrderBy{{FieldName: "createdAt", SortType: records.SortDesc}},
	}
	if email := types.NormalizeEmail(filter.CustomerEmail); email != "" {
		q.Where = []records.Condition{records.Eq("customerEmail", email)}
	}
	page := filter.Page.Normalize()
	q.PagingInfo = &records.Paging{Limit: page.Limit, Offset: page.Offset}

	res, err := r.store.Fetch(ctx, records.CollectionOrders, q)
	if err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	if err := json.Unmarshal(res.Data, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}
	return orders, res.Total, nil
}

func (r *remoteRepository) Update(ctx context.Context, order *models.Order) error {
	if order.ID == 0 {
		existing, err := r.GetByOrderID(ctx, order.OrderID)
		if err != nil {
			return err
		}
		order.ID = existing.ID
	}
	raw, err := r.store.Update(ctx, records.CollectionOrders, orderRecord(order, true))
	if err != nil {
		return err
	}
	return decodeOrder(raw, order)
}

func (r *remoteRepository) Delete(ctx context.Context, orderID string) error {
	existing, err := r.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, records.CollectionOrders, existing.ID)
}

func decodeOrder(raw json.RawMessage, order *models.Order) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, order); err != nil {
		return fmt.Errorf("decode order: %w", err)
	}
	return nil
}

func orderRecord(o *models.Order, withID bool) map[string]any {
	record := map[string]any{
		"orderId":           o.OrderID,
		"items":             o.Items,
		"subtotal":          o.Subtotal,
		"shipping":          o.Shipping,
		"tax":               o.Tax,
		"total":             o.Total,
		"shippingAddress":   o.ShippingAddress,
		"billingAddress":    o.BillingAddress,
		"paymentMethod":     o.PaymentMethod,
		"customerEmail":     o.CustomerEmail,
		"isGuest":           o.IsGuest,
		"status":            o.Status,
		"estimatedDelivery": o.EstimatedDelivery,
		"createdAt":         o.CreatedAt,
	}
	if o.IdempotencyKey != nil {
		record["idempotencyKey"] = *o.IdempotencyKey
	}
	if withID {
		record["Id"] = o.ID
	}
	return record
}
