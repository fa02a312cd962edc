package orders

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/artisanmarket/storefront/pkg/db/models"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/pagination"
	"github.com/artisanmarket/storefront/pkg/types"
)

// CreateInput is a priced cart snapshot ready to become an order.
type CreateInput struct {
	Items           []types.LineItem
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	ShippingAddress types.ShippingAddress
	BillingAddress  types.BillingAddress
	PaymentMethod   string
	CustomerEmail   string
	IsGuest         bool
	// IdempotencyKey makes repeated creates return the first order.
	IdempotencyKey string
}

// UpdateInput holds optional order edits; nil fields keep their value.
type UpdateInput struct {
	ShippingAddress *types.ShippingAddress
	BillingAddress  *types.BillingAddress
	PaymentMethod   *string
	CustomerEmail   *string
}

// ListResult is one page of orders.
type ListResult struct {
	Items []models.Order  `json:"items"`
	Page  pagination.Page `json:"page"`
}

func (in CreateInput) validate() error {
	var fields []pkgerrors.FieldError
	if len(in.Items) == 0 {
		fields = append(fields, pkgerrors.FieldError{Field: "items", Message: "order must contain at least one item"})
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			fields = append(fields, pkgerrors.FieldError{Field: "items", Message: "item quantities must be at least 1"})
			break
		}
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		fields = append(fields, pkgerrors.FieldError{Field: "customerEmail", Message: "customer email is required"})
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid order").WithDetails(fields)
}

func (in UpdateInput) apply(o *models.Order) {
	if in.ShippingAddress != nil {
		o.ShippingAddress = *in.ShippingAddress
	}
	if in.BillingAddress != nil {
		o.BillingAddress = *in.BillingAddress
	}
	if in.PaymentMethod != nil {
		o.PaymentMethod = *in.PaymentMethod
	}
	if in.CustomerEmail != nil {
		o.CustomerEmail = strings.TrimSpace(*in.CustomerEmail)
	}
}
