package types

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// LineItem is one cart row; orders keep a snapshot of the same shape.
type LineItem struct {
	ProductID         int64           `json:"productId"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Image             string          `json:"image"`
	Quantity          int             `json:"quantity"`
	SelectedVariation Variation       `json:"selectedVariation,omitempty"`
}

// IdentityKey identifies a line by product and canonical variation.
func (li LineItem) IdentityKey() string {
	return LineIdentity(li.ProductID, li.SelectedVariation)
}

// LineTotal is price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// LineIdentity builds the identity key for a product and variation.
func LineIdentity(productID int64, variation Variation) string {
	return strconv.FormatInt(productID, 10) + "|" + variation.Key()
}
