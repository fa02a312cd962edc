package reviews

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/artisanmarket/storefront/internal/orders"
	"github.com/artisanmarket/storefront/pkg/db/models"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/pagination"
	"github.com/artisanmarket/storefront/pkg/types"
)

const (
	minTitleLength   = 3
	minCommentLength = 10
	maxCommentLength = 500
	anonymousName    = "Anonymous"

	reasonEmailMissing    = "Please provide your email address"
	reasonAlreadyReviewed = "You have already reviewed this product"
	reasonUnverified      = "You can review this product, but it won't be marked as verified purchase"
	reasonVerified        = "You can leave a verified review for this product"
)

// Eligibility answers whether a shopper may review a product.
type Eligibility struct {
	CanReview        bool   `json:"canReview"`
	VerifiedPurchase bool   `json:"verifiedPurchase"`
	OrderID          string `json:"orderId,omitempty"`
	ExistingReviewID *int64 `json:"existingReviewId,omitempty"`
	Reason           string `json:"reason"`
}

// CreateInput is a new review as submitted by a shopper.
type CreateInput struct {
	ProductID     int64
	Rating        int
	Title         string
	Comment       string
	CustomerName  string
	CustomerEmail string
}

// UpdateInput holds optional review edits; nil fields keep their value.
type UpdateInput struct {
	Rating       *int
	Title        *string
	Comment      *string
	CustomerName *string
}

// OrderLister is the slice of the order service used to find purchases.
type OrderLister interface {
	List(ctx context.Context, filter orders.ListFilter) (*orders.ListResult, error)
}

// Service manages product reviews.
type Service interface {
	ListByProduct(ctx context.Context, productID int64) ([]models.Review, error)
	Get(ctx context.Context, id int64) (*models.Review, error)
	CanReview(ctx context.Context, productID int64, email string) (*Eligibility, error)
	Create(ctx context.Context, input CreateInput) (*models.Review, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Review, error)
	Delete(ctx context.Context, id int64) error
	MarkHelpful(ctx context.Context, id int64) (*models.Review, error)
}

type service struct {
	repo   Repository
	orders OrderLister
	now    func() time.Time
}

// NewService constructs a review service. now may be nil.
func NewService(repo Repository, orderLister OrderLister, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if orderLister == nil {
		return nil, fmt.Errorf("order lister required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, orders: orderLister, now: now}, nil
}

// ListByProduct returns a product's reviews, newest first.
func (s *service) ListByProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, wrapRepoErr(err, "list reviews")
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err, "load review")
	}
	return review, nil
}

func (s *service) CanReview(ctx context.Context, productID int64, email string) (*Eligibility, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return &Eligibility{Reason: reasonEmailMissing}, nil
	}

	existing, err := s.repo.FindByProductAndEmail(ctx, productID, email)
	switch {
	case err == nil:
		id := existing.ID
		return &Eligibility{Reason: reasonAlreadyReviewed, ExistingReviewID: &id}, nil
	case !pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return nil, wrapRepoErr(err, "check existing review")
	}

	order, err := s.findPurchase(ctx, productID, email)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return &Eligibility{CanReview: true, Reason: reasonUnverified}, nil
	}
	return &Eligibility{
		CanReview:        true,
		VerifiedPurchase: true,
		OrderID:          order.OrderID,
		Reason:           reasonVerified,
	}, nil
}

// findPurchase returns the first of the shopper's orders containing the product.
func (s *service) findPurchase(ctx context.Context, productID int64, email string) (*models.Order, error) {
	page := pagination.Params{Limit: pagination.MaxLimit}
	for {
		res, err := s.orders.List(ctx, orders.ListFilter{CustomerEmail: email, Page: page})
		if err != nil {
			return nil, err
		}
		for i := range res.Items {
			if res.Items[i].ContainsProduct(productID) {
				return &res.Items[i], nil
			}
		}
		page.Offset += len(res.Items)
		if len(res.Items) == 0 || int64(page.Offset) >= res.Page.Total {
			return nil, nil
		}
	}
}

// Create stores a review. Verified purchase is derived from the shopper's
// orders, never taken from input.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Review, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Comment = strings.TrimSpace(input.Comment)
	input.CustomerEmail = types.NormalizeEmail(input.CustomerEmail)

	var errs error
	if input.ProductID <= 0 {
		errs = multierr.Append(errs, pkgerrors.FieldError{Field: "productId", Message: "Product ID is required"})
	}
	errs = multierr.Append(errs, validateRating(input.Rating))
	errs = multierr.Append(errs, validateTitle(input.Title))
	errs = multierr.Append(errs, validateComment(input.Comment))
	if input.CustomerEmail == "" {
		errs = multierr.Append(errs, pkgerrors.FieldError{Field: "customerEmail", Message: "Customer email is required"})
	}
	if err := pkgerrors.Validation(errs); err != nil {
		return nil, err
	}

	eligibility, err := s.CanReview(ctx, input.ProductID, input.CustomerEmail)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanReview {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, eligibility.Reason)
	}

	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		name = anonymousName
	}
	now := s.now().UTC()
	review := &models.Review{
		ProductID:        input.ProductID,
		Rating:           input.Rating,
		Title:            input.Title,
		Comment:          input.Comment,
		CustomerName:     name,
		CustomerEmail:    input.CustomerEmail,
		VerifiedPurchase: eligibility.VerifiedPurchase,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if eligibility.OrderID != "" {
		orderID := eligibility.OrderID
		review.OrderID = &orderID
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, wrapRepoErr(err, "create review")
	}
	return review, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Review, error) {
	var errs error
	if input.Rating != nil {
		errs = multierr.Append(errs, validateRating(*input.Rating))
	}
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
		errs = multierr.Append(errs, validateTitle(trimmed))
	}
	if input.Comment != nil {
		trimmed := strings.TrimSpace(*input.Comment)
		input.Comment = &trimmed
		errs = multierr.Append(errs, validateComment(trimmed))
	}
	if err := pkgerrors.Validation(errs); err != nil {
		return nil, err
	}

	review, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Title != nil {
		review.Title = *input.Title
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}
	if input.CustomerName != nil {
		if name := strings.TrimSpace(*input.CustomerName); name != "" {
			review.CustomerName = name
		}
	}
	review.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, wrapRepoErr(err, "update review")
	}
	return review, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapRepoErr(err, "delete review")
	}
	return nil
}

func (s *service) MarkHelpful(ctx context.Context, id int64) (*models.Review, error) {
	review, err := s.repo.IncrementHelpful(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err, "mark review helpful")
	}
	return review, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return pkgerrors.FieldError{Field: "rating", Message: "Rating must be between 1 and 5"}
	}
	return nil
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) < minTitleLength {
		return pkgerrors.FieldError{Field: "title", Message: "Review title must be at least 3 characters"}
	}
	return nil
}

func validateComment(comment string) error {
	n := utf8.RuneCountInString(comment)
	if n < minCommentLength {
		return pkgerrors.FieldError{Field: "comment", Message: "Review comment must be at least 10 characters"}
	}
	if n > maxCommentLength {
		return pkgerrors.FieldError{Field: "comment", Message: "Review comment must be at most 500 characters"}
	}
	return nil
}

func wrapRepoErr(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
