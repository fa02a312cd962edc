package reviews

import (
	"context"

	"github.com/artisanmarket/storefront/pkg/db/models"
)

// Repository persists product reviews. Lookups, updates and deletes report
// missing reviews as CodeNotFound.
type Repository interface {
	ListByProduct(ctx context.Context, productID int64) ([]models.Review, error)
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	FindByProductAndEmail(ctx context.Context, productID int64, email string) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id int64) error
	IncrementHelpful(ctx context.Context, id int64) (*models.Review, error)
}
