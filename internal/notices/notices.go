// Package notices collects the user-facing toasts raised while a request is
// handled so the response envelope can return them.
package notices

import (
	"context"
	"sync"

	"github.com/artisanmarket/storefront/pkg/enums"
	"github.com/artisanmarket/storefront/pkg/types"
)

// Notifier is what services use to surface a message to the shopper.
type Notifier interface {
	Notify(ctx context.Context, level enums.NoticeLevel, message string)
}

// Collector accumulates notices for one request.
type Collector struct {
	mu    sync.Mutex
	items []types.Notice
}

func (c *Collector) add(n types.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// Items returns a copy of the collected notices in the order raised.
func (c *Collector) Items() []types.Notice {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return nil
	}
	out := make([]types.Notice, len(c.items))
	copy(out, c.items)
	return out
}

type ctxKey struct{}

// NewContext attaches a fresh collector to ctx.
func NewContext(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, ctxKey{}, c), c
}

// FromContext returns the request's collector, or nil.
func FromContext(ctx context.Context) *Collector {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(ctxKey{}).(*Collector)
	return c
}

// ContextNotifier records notices on the collector carried by ctx and drops
// them when there is none (background work, tests without a collector).
type ContextNotifier struct{}

func (ContextNotifier) Notify(ctx context.Context, level enums.NoticeLevel, message string) {
	if c := FromContext(ctx); c != nil {
		c.add(types.Notice{Level: level, Message: message})
	}
}

// Recorder is a Notifier that keeps everything it is given.
type Recorder struct {
	Collector
}

func (r *Recorder) Notify(_ context.Context, level enums.NoticeLevel, message string) {
	r.add(types.Notice{Level: level, Message: message})
}
