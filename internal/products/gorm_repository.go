package product

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/artisanmarket/storefront/internal/repo"
	"github.com/artisanmarket/storefront/pkg/db"
	"github.com/artisanmarket/storefront/pkg/db/models"
	"github.com/artisanmarket/storefront/pkg/enums"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
)

type gormRepository struct {
	repo.Base
}

// NewGormRepository builds a product repository over the local products table.
func NewGormRepository(conn *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(conn)}
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error) {
	q := r.DB(ctx).Model(&models.Product{})

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", like, like, like)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if len(filter.Categories) > 0 {
		q = q.Where("category IN ?", filter.Categories)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	if len(filter.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN ?", filter.ExcludeIDs)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var products []models.Product
	err := q.Order(orderClause(filter.Sort)).
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func orderClause(sort enums.ProductSort) string {
	switch sort {
	case enums.ProductSortPriceLow:
		return "price ASC, id DESC"
	case enums.ProductSortPriceHigh:
		return "price DESC, id DESC"
	case enums.ProductSortRating:
		return "rating DESC, id DESC"
	default:
		return "id DESC"
	}
}

func (r *gormRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
		}
		return nil, err
	}
	return &product, nil
}

func (r *gormRepository) Create(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Create(product).Error
}

func (r *gormRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.DB(ctx).Model(product).Select("*").Omit("created_at").Updates(product)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", product.ID)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id int64) error {
	res := r.DB(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
	}
	return nil
}
