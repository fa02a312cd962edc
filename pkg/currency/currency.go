// Package currency formats and parses US dollar amounts the way the
// storefront displays them.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders amount as en-US dollars with two decimals and thousands
// separators, e.g. "$1,234.56" or "-$1.00".
func Format(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	negative := rounded.IsNegative()
	fixed := rounded.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Parse strips dollar signs and thousands separators. Unparsable input is zero.
func Parse(s string) decimal.Decimal {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return v
}
