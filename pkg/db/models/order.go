package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/artisanmarket/storefront/pkg/enums"
	"github.com/artisanmarket/storefront/pkg/types"
)

// Order is a placed storefront order with its priced cart snapshot.
type Order struct {
	ID                int64                 `gorm:"column:id;primaryKey;autoIncrement" json:"Id"`
	OrderID           string                `gorm:"column:order_id;not null;uniqueIndex" json:"orderId"`
	Items             []types.LineItem      `gorm:"column:items;type:jsonb;serializer:json;not null" json:"items"`
	Subtotal          decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	Shipping          decimal.Decimal       `gorm:"column:shipping;type:numeric(12,2);not null" json:"shipping"`
	Tax               decimal.Decimal       `gorm:"column:tax;type:numeric(12,2);not null" json:"tax"`
	Total             decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	ShippingAddress   types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json;not null" json:"shippingAddress"`
	BillingAddress    types.BillingAddress  `gorm:"column:billing_address;type:jsonb;serializer:json;not null" json:"billingAddress"`
	PaymentMethod     string                `gorm:"column:payment_method;not null" json:"paymentMethod"`
	CustomerEmail     string                `gorm:"column:customer_email;not null;index" json:"customerEmail"`
	IsGuest           bool                  `gorm:"column:is_guest;not null" json:"isGuest"`
	Status            enums.OrderStatus     `gorm:"column:status;not null;default:'confirmed'" json:"status"`
	IdempotencyKey    *string               `gorm:"column:idempotency_key;uniqueIndex" json:"idempotencyKey,omitempty"`
	EstimatedDelivery time.Time             `gorm:"column:estimated_delivery;not null" json:"estimatedDelivery"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// ContainsProduct reports whether any line of the order is for productID.
func (o Order) ContainsProduct(productID int64) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
