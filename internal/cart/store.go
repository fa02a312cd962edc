package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/artisanmarket/storefront/internal/notices"
	"github.com/artisanmarket/storefront/pkg/db/models"
	"github.com/artisanmarket/storefront/pkg/enums"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/metrics"
	"github.com/artisanmarket/storefront/pkg/types"
)

const removedMessage = "Item removed from cart"

// Store is one session's cart. Mutators never fail: storage errors are logged
// and counted, and the in-memory state stays authoritative for the request.
type Store struct {
	mu        sync.Mutex
	sessionID string
	items     []types.LineItem

	storage  Storage
	notifier notices.Notifier
	logg     *logger.Logger
	metrics  *metrics.Storefront
}

// Snapshot is the read model returned to clients.
type Snapshot struct {
	Items     []types.LineItem `json:"items"`
	Total     decimal.Decimal  `json:"total"`
	ItemCount int              `json:"itemCount"`
}

// AddItem merges quantity into the line matching the product and variation,
// or appends a new line built from the product. Quantities below one are
// treated as one.
func (s *Store) AddItem(ctx context.Context, product models.Product, quantity int, variation types.Variation) {
	if quantity < 1 {
		quantity = 1
	}
	key := types.LineIdentity(product.ID, variation)

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].IdentityKey() == key {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, types.LineItem{
			ProductID:         product.ID,
			Name:              product.Name,
			Price:             product.Price,
			Image:             product.PrimaryImage(),
			Quantity:          quantity,
			SelectedVariation: variation.Clone(),
		})
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notifier.Notify(ctx, enums.NoticeLevelSuccess, fmt.Sprintf("%s added to cart!", product.Name))
}

// RemoveItem deletes the matching line. A missing line leaves the cart as is.
func (s *Store) RemoveItem(ctx context.Context, productID int64, variation types.Variation) {
	key := types.LineIdentity(productID, variation)

	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.IdentityKey() != key {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notifier.Notify(ctx, enums.NoticeLevelInfo, removedMessage)
}

// UpdateQuantity replaces the quantity of the matching line. Zero or less
// removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, variation types.Variation, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID, variation)
		return
	}
	key := types.LineIdentity(productID, variation)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].IdentityKey() == key {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.persistLocked(ctx)
}

// Clear empties the cart and deletes the stored snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err := s.storage.Remove(ctx, s.sessionID); err != nil {
		s.metrics.IncCartStorageFailure("remove")
		s.logg.Error(ctx, "cart.remove_failed", err)
	}
}

// Total is the sum of price times quantity.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalOf(s.items)
}

// ItemCount is the sum of line quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOf(s.items)
}

// Items returns a copy of the lines in display order.
func (s *Store) Items() []types.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// Snapshot returns the items with their total and count, read under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:     copyItems(s.items),
		Total:     totalOf(s.items),
		ItemCount: countOf(s.items),
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := s.storage.Save(ctx, s.sessionID, s.items); err != nil {
		s.metrics.IncCartStorageFailure("save")
		s.logg.Error(ctx, "cart.persist_failed", err)
	}
}

func totalOf(items []types.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func countOf(items []types.LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func copyItems(items []types.LineItem) []types.LineItem {
	out := make([]types.LineItem, len(items))
	for i, item := range items {
		item.SelectedVariation = item.SelectedVariation.Clone()
		out[i] = item
	}
	return out
}
