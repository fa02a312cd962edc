package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/artisanmarket/storefront/pkg/db"
)

// Base is embedded by the GORM-backed record repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx returns a Base bound to the provided transaction.
func (b Base) WithTx(tx *gorm.DB) Base {
	return Base{db: tx}
}

// InTx runs fn against a Base bound to a new transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (b Base) InTx(ctx context.Context, fn func(tx Base) error) error {
	return db.Wrap(b.db).WithTx(ctx, func(tx *gorm.DB) error {
		return fn(b.WithTx(tx))
	})
}
