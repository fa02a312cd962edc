package reviews

import (
	"context"

	"gorm.io/gorm"

	"github.com/artisanmarket/storefront/internal/repo"
	"github.com/artisanmarket/storefront/pkg/db"
	"github.com/artisanmarket/storefront/pkg/db/models"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/types"
)

type gormRepository struct {
	repo.Base
}

// NewGormRepository builds a review repository over the local reviews table.
func NewGormRepository(conn *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(conn)}
}

func (r *gormRepository) ListByProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	var reviews []models.Review
	err := r.DB(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *gormRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := r.DB(ctx).First(&review, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Review not found")
		}
		return nil, err
	}
	return &review, nil
}

func (r *gormRepository) FindByProductAndEmail(ctx context.Context, productID int64, email string) (*models.Review, error) {
	var review models.Review
	err := r.DB(ctx).
		Where("product_id = ? AND LOWER(customer_email) = ?", productID, types.NormalizeEmail(email)).
		First(&review).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Review not found")
		}
		return nil, err
	}
	return &review, nil
}

func (r *gormRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.DB(ctx).Create(review).Error; err != nil {
		if db.IsUniqueViolation(err, "idx_reviews_product_email") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "You have already reviewed this product")
		}
		return err
	}
	return nil
}

func (r *gormRepository) Update(ctx context.Context, review *models.Review) error {
	res := r.DB(ctx).Model(review).Select("*").Omit("created_at").Updates(review)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Review not found")
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id int64) error {
	res := r.DB(ctx).Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Review not found")
	}
	return nil
}

// IncrementHelpful bumps the counter in SQL so concurrent votes are not lost,
// and reads the row back inside the same transaction.
func (r *gormRepository) IncrementHelpful(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	err := r.InTx(ctx, func(tx repo.Base) error {
		res := tx.DB(ctx).Model(&models.Review{}).
			Where("id = ?", id).
			Update("helpful_count", gorm.Expr("helpful_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Review not found")
		}
		return tx.DB(ctx).First(&review, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}
