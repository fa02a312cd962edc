package product

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/artisanmarket/storefront/pkg/db/models"
	"github.com/artisanmarket/storefront/pkg/enums"
	"github.com/artisanmarket/storefront/pkg/records"
)

var productFields = records.Fields(
	"Id", "name", "description", "price", "category", "images", "featured",
	"stock", "rating", "reviewCount", "variations", "createdAt", "updatedAt",
)

type remoteRepository struct {
	store records.Store
}

// NewRemoteRepository maps products onto the record service's product_c collection.
func NewRemoteRepository(store records.Store) Repository {
	return &remoteRepository{store: store}
}

func (r *remoteRepository) List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error) {
	q := records.Query{Fields: productFields}

	if search := strings.TrimSpace(filter.Search); search != "" {
		q.WhereAny = []records.Condition{
			records.Contains("name", search),
			records.Contains("description", search),
			records.Contains("category", search),
		}
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		q.Where = append(q.Where, records.Eq("category", category))
	}
	if len(filter.Categories) > 0 {
		q.Where = append(q.Where, records.In("category", toAny(filter.Categories)...))
	}
	if filter.MinPrice != nil {
		q.Where = append(q.Where, records.Gte("price", filter.MinPrice.InexactFloat64()))
	}
	if filter.MaxPrice != nil {
		q.Where = append(q.Where, records.Lte("price", filter.MaxPrice.InexactFloat64()))
	}
	if filter.Featured != nil {
		q.Where = append(q.Where, records.Eq("featured", *filter.Featured))
	}
	if len(filter.IDs) > 0 {
		q.Where = append(q.Where, records.In("Id", toAny(filter.IDs)...))
	}
	if len(filter.ExcludeIDs) > 0 {
		q.Where = append(q.Where, records.NotIn("Id", toAny(filter.ExcludeIDs)...))
	}
	q.OrderBy = remoteOrder(filter.Sort)
	page := filter.Page.Normalize()
	q.PagingInfo = &records.Paging{Limit: page.Limit, Offset: page.Offset}

	res, err := r.store.Fetch(ctx, records.CollectionProducts, q)
	if err != nil {
		return nil, 0, err
	}
	var products []models.Product
	if err := json.Unmarshal(res.Data, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, res.Total, nil
}

func remoteOrder(sort enums.ProductSort) []records.OrderBy {
	switch sort {
	case enums.ProductSortPriceLow:
		return []records.OrderBy{{FieldName: "price", SortType: records.SortAsc}}
	case enums.ProductSortPriceHigh:
		return []records.OrderBy{{FieldName: "price", SortType: records.SortDesc}}
	case enums.ProductSortRating:
		return []records.OrderBy{{FieldName: "rating", SortType: records.SortDesc}}
	default:
		return []records.OrderBy{{FieldName: "Id", SortType: records.SortDesc}}
	}
}

func (r *remoteRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	raw, err := r.store.GetByID(ctx, records.CollectionProducts, id)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &product, nil
}

func (r *remoteRepository) Create(ctx context.Context, product *models.Product) error {
	raw, err := r.store.Create(ctx, records.CollectionProducts, productRecord(product, false))
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, product)
}

func (r *remoteRepository) Update(ctx context.Context, product *models.Product) error {
	raw, err := r.store.Update(ctx, records.CollectionProducts, productRecord(product, true))
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, product)
}

func (r *remoteRepository) Delete(ctx context.Context, id int64) error {
	return r.store.Delete(ctx, records.CollectionProducts, id)
}

// productRecord holds only the writable fields; the service owns ids and timestamps.
func productRecord(p *models.Product, withID bool) map[string]any {
	record := map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"images":      p.Images,
		"featured":    p.Featured,
		"stock":       p.Stock,
		"rating":      p.Rating,
		"reviewCount": p.ReviewCount,
		"variations":  p.Variations,
	}
	if withID {
		record["Id"] = p.ID
	}
	return record
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
