package cart

import (
	"context"
	"fmt"

	"github.com/artisanmarket/storefront/internal/notices"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/metrics"
)

// Service opens per-session cart stores over shared storage.
type Service interface {
	Open(ctx context.Context, sessionID string) *Store
}

type service struct {
	storage  Storage
	notifier notices.Notifier
	logg     *logger.Logger
	metrics  *metrics.Storefront
}

// NewService builds a cart service backed by the provided storage.
func NewService(storage Storage, notifier notices.Notifier, logg *logger.Logger, m *metrics.Storefront) (Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		storage:  storage,
		notifier: notifier,
		logg:     logg,
		metrics:  m,
	}, nil
}

// Open loads the session's persisted cart. Unreadable or missing snapshots
// open as an empty cart.
func (s *service) Open(ctx context.Context, sessionID string) *Store {
	items, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		s.metrics.IncCartStorageFailure("load")
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.load_failed")
		items = nil
	}
	return &Store{
		sessionID: sessionID,
		items:     items,
		storage:   s.storage,
		notifier:  s.notifier,
		logg:      s.logg,
		metrics:   s.metrics,
	}
}
