package notices

import (
	"context"
	"testing"

	"github.com/artisanmarket/storefront/pkg/enums"
	"github.com/artisanmarket/storefront/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestContextNotifierCollectsInOrder(t *testing.T) {
	ctx, collector := NewContext(context.Background())
	n := ContextNotifier{}

	n.Notify(ctx, enums.NoticeLevelSuccess, "Mug added to cart!")
	n.Notify(ctx, enums.NoticeLevelInfo, "Item removed from cart")

	assert.Equal(t, []types.Notice{
		{Level: enums.NoticeLevelSuccess, Message: "Mug added to cart!"},
		{Level: enums.NoticeLevelInfo, Message: "Item removed from cart"},
	}, collector.Items())
	assert.Same(t, collector, FromContext(ctx))
}

func TestContextNotifierWithoutCollectorIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		ContextNotifier{}.Notify(context.Background(), enums.NoticeLevelInfo, "dropped")
	})
	assert.Nil(t, FromContext(context.Background()))
	var c *Collector
	assert.Nil(t, c.Items())
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Notify(context.Background(), enums.NoticeLevelError, "boom")
	assert.Len(t, r.Items(), 1)
}
