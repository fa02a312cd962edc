package reviews

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/artisanmarket/storefront/pkg/db/models"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/pagination"
	"github.com/artisanmarket/storefront/pkg/records"
	"github.com/artisanmarket/storefront/pkg/types"
)

var reviewFields = records.Fields(
	"Id", "productId", "orderId", "rating", "title", "comment", "customerName",
	"customerEmail", "verifiedPurchase", "helpfulCount", "createdAt", "updatedAt",
)

type remoteRepository struct {
	store records.Store
}

// NewRemoteRepository maps reviews onto the record service's review_c collection.
func NewRemoteRepository(store records.Store) Repository {
	return &remoteRepository{store: store}
}

func (r *remoteRepository) ListByProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	return r.fetch(ctx, records.Query{
		Fields:     reviewFields,
		Where:      []records.Condition{records.Eq("productId", productID)},
		OrderBy:    []records.OrderBy{{FieldName: "createdAt", SortType: records.SortDesc}},
		PagingInfo: &records.Paging{Limit: pagination.MaxLimit},
	})
}

func (r *remoteRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	raw, err := r.store.GetByID(ctx, records.CollectionReviews, id)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Review not found")
		}
		return nil, err
	}
	var review models.Review
	if err := json.Unmarshal(raw, &review); err != nil {
		return nil, fmt.Errorf("decode review: %w", err)
	}
	return &review, nil
}

func (r *remoteRepository) FindByProductAndEmail(ctx context.Context, productID int64, email string) (*models.Review, error) {
	found, err := r.fetch(ctx, records.Query{
		Fields: reviewFields,
		Where: []records.Condition{
			records.Eq("productId", productID),
			records.Eq("customerEmail", types.NormalizeEmail(email)),
		},
		PagingInfo: &records.Paging{Limit: 1},
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Review not found")
	}
	return &found[0], nil
}

func (r *remoteRepository) fetch(ctx context.Context, q records.Query) ([]models.Review, error) {
	res, err := r.store.Fetch(ctx, records.CollectionReviews, q)
	if err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := json.Unmarshal(res.Data, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *remoteRepository) Create(ctx context.Context, review *models.Review) error {
	raw, err := r.store.Create(ctx, records.CollectionReviews, reviewRecord(review, false))
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, review)
}

func (r *remoteRepository) Update(ctx context.Context, review *models.Review) error {
	raw, err := r.store.Update(ctx, records.CollectionReviews, reviewRecord(review, true))
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, review)
}

func (r *remoteRepository) Delete(ctx context.Context, id int64) error {
	return r.store.Delete(ctx, records.CollectionReviews, id)
}

// IncrementHelpful is read-modify-write; the record service has no atomic
// increment.
func (r *remoteRepository) IncrementHelpful(ctx context.Context, id int64) (*models.Review, error) {
	review, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	review.HelpfulCount++
	if err := r.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func reviewRecord(rv *models.Review, withID bool) map[string]any {
	record := map[string]any{
		"productId":        rv.ProductID,
		"orderId":          rv.OrderID,
		"rating":           rv.Rating,
		"title":            rv.Title,
		"comment":          rv.Comment,
		"customerName":     rv.CustomerName,
		"customerEmail":    rv.CustomerEmail,
		"verifiedPurchase": rv.VerifiedPurchase,
		"helpfulCount":     rv.HelpfulCount,
		"createdAt":        rv.CreatedAt,
		"updatedAt":        rv.UpdatedAt,
	}
	if withID {
		record["Id"] = rv.ID
	}
	return record
}
