// Package pricing computes order totals from a cart subtotal.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Policy holds the shipping and tax rules applied at checkout.
type Policy struct {
	// FreeShippingThreshold is exclusive: subtotals strictly above it ship free.
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPolicy is free shipping over $75, otherwise $9.99, with 8% tax.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromInt(75),
		ShippingFee:           decimal.RequireFromString("9.99"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// Summary is the priced breakdown shown on the review step and stored on orders.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func (p Policy) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.ShippingFee
}

// Tax is rounded half away from zero to cents.
func (p Policy) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.TaxRate).Round(2)
}

func (p Policy) Summarize(subtotal decimal.Decimal) Summary {
	shipping := p.Shipping(subtotal)
	tax := p.Tax(subtotal)
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
