package product

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/artisanmarket/storefront/pkg/db/models"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/pagination"
)

// DefaultSuggestionLimit is how many related or recommended products are returned.
const DefaultSuggestionLimit = 4

// Service exposes catalog browsing and admin product management.
type Service interface {
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	ByCategory(ctx context.Context, category string) ([]models.Product, error)
	Featured(ctx context.Context) ([]models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	Related(ctx context.Context, id int64, limit int) ([]models.Product, error)
	Recommended(ctx context.Context, ids []int64, limit int) ([]models.Product, error)
}

// ShuffleFunc reorders n elements through swap, matching rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// Option customizes the product service.
type Option func(*service)

// WithShuffle replaces the random ordering used for suggestions.
func WithShuffle(fn ShuffleFunc) Option {
	return func(s *service) {
		if fn != nil {
			s.shuffle = fn
		}
	}
}

type service struct {
	repo    Repository
	shuffle ShuffleFunc
}

// NewService constructs a product service instance.
func NewService(repo Repository, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	s := &service{repo: repo, shuffle: rand.Shuffle}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter.Page = filter.Page.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, wrapRepoErr(err, "list products")
	}
	if items == nil {
		items = []models.Product{}
	}
	return &ListResult{
		Items: items,
		Page:  pagination.Page{Limit: filter.Page.Limit, Offset: filter.Page.Offset, Total: total},
	}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err, "load product")
	}
	return product, nil
}

func (s *service) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return []models.Product{}, nil
	}
	return s.all(ctx, ListFilter{Category: category}, "list products by category")
}

func (s *service) Featured(ctx context.Context) ([]models.Product, error) {
	featured := true
	return s.all(ctx, ListFilter{Featured: &featured}, "list featured products")
}

func (s *service) Search(ctx context.Context, query string) ([]models.Product, error) {
	return s.all(ctx, ListFilter{Search: query}, "search products")
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	product := input.model()
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, wrapRepoErr(err, "create product")
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(product)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, wrapRepoErr(err, "update product")
	}
	return product, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapRepoErr(err, "delete product")
	}
	return nil
}

// Related returns other products from the same category in random order.
// An unknown product has no related products.
func (s *service) Related(ctx context.Context, id int64, limit int) ([]models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return []models.Product{}, nil
		}
		return nil, wrapRepoErr(err, "load product")
	}
	candidates, err := s.all(ctx, ListFilter{
		Categories: []string{product.Category},
		ExcludeIDs: []int64{product.ID},
	}, "list related products")
	if err != nil {
		return nil, err
	}
	return s.pick(candidates, limit), nil
}

// Recommended returns products sharing a category with any of ids, excluding
// ids themselves, in random order.
func (s *service) Recommended(ctx context.Context, ids []int64, limit int) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	owned, err := s.all(ctx, ListFilter{IDs: ids}, "load cart products")
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(owned))
	seen := make(map[string]struct{}, len(owned))
	for _, p := range owned {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	if len(categories) == 0 {
		return []models.Product{}, nil
	}
	candidates, err := s.all(ctx, ListFilter{Categories: categories, ExcludeIDs: ids}, "list recommended products")
	if err != nil {
		return nil, err
	}
	return s.pick(candidates, limit), nil
}

func (s *service) all(ctx context.Context, filter ListFilter, op string) ([]models.Product, error) {
	filter.Page = pagination.Params{Limit: pagination.MaxLimit}
	items, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, wrapRepoErr(err, op)
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}

func (s *service) pick(candidates []models.Product, limit int) []models.Product {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	s.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func wrapRepoErr(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
