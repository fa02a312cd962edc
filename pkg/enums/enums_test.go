package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, status)
	assert.True(t, status.Notifiable())
	assert.False(t, OrderStatusConfirmed.Notifiable())

	_, err = ParseOrderStatus("lost")
	assert.Error(t, err)
	assert.False(t, OrderStatus("lost").Notifiable())
}

func TestCheckoutStepNavigation(t *testing.T) {
	next, ok := CheckoutStepShipping.Next()
	assert.True(t, ok)
	assert.Equal(t, CheckoutStepPayment, next)

	_, ok = CheckoutStepReview.Next()
	assert.False(t, ok)

	prev, ok := CheckoutStepReview.Previous()
	assert.True(t, ok)
	assert.Equal(t, CheckoutStepPayment, prev)

	_, ok = CheckoutStepShipping.Previous()
	assert.False(t, ok)

	_, err := ParseCheckoutStep("confirm")
	assert.Error(t, err)
}

func TestParseProductSort(t *testing.T) {
	sort, err := ParseProductSort("")
	require.NoError(t, err)
	assert.Equal(t, ProductSortNewest, sort)

	sort, err = ParseProductSort("price-high")
	require.NoError(t, err)
	assert.Equal(t, ProductSortPriceHigh, sort)

	_, err = ParseProductSort("popular")
	assert.Error(t, err)
}
