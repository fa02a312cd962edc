package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/artisanmarket/storefront/api/responses"
	"github.com/artisanmarket/storefront/api/validators"
	product "github.com/artisanmarket/storefront/internal/products"
	"github.com/artisanmarket/storefront/pkg/enums"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/pagination"
	"github.com/artisanmarket/storefront/pkg/types"
)

type createProductRequest struct {
	Name        string                  `json:"name" validate:"required,max=200"`
	Description string                  `json:"description" validate:"max=5000"`
	Price       decimal.Decimal         `json:"price"`
	Category    string                  `json:"category" validate:"required,max=100"`
	Images      []string                `json:"images" validate:"dive,url"`
	Featured    bool                    `json:"featured"`
	Stock       int                     `json:"stock" validate:"gte=0"`
	Rating      float64                 `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount int                     `json:"reviewCount" validate:"gte=0"`
	Variations  []types.VariationOption `json:"variations"`
}

type updateProductRequest struct {
	Name        *string                  `json:"name" validate:"omitempty,max=200"`
	Description *string                  `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal         `json:"price"`
	Category    *string                  `json:"category" validate:"omitempty,max=100"`
	Images      *[]string                `json:"images"`
	Featured    *bool                    `json:"featured"`
	Stock       *int                     `json:"stock" validate:"omitempty,gte=0"`
	Rating      *float64                 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount *int                     `json:"reviewCount" validate:"omitempty,gte=0"`
	Variations  *[]types.VariationOption `json:"variations"`
}

// ProductList returns one page of the catalog. Supported query parameters:
// search, category, categories (comma separated), minPrice, maxPrice,
// featured, sort, limit and offset.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		filter, err := parseProductFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, result)
	}
}

func parseProductFilter(r *http.Request) (product.ListFilter, error) {
	q := r.URL.Query()
	filter := product.ListFilter{
		Search:   validators.SanitizeString(q.Get("search"), 200),
		Category: validators.SanitizeString(q.Get("category"), 100),
		Page:     pagination.ParseParams(q.Get("limit"), q.Get("offset")),
	}
	for _, c := range strings.Split(q.Get("categories"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			filter.Categories = append(filter.Categories, c)
		}
	}

	sort, err := enums.ParseProductSort(strings.TrimSpace(q.Get("sort")))
	if err != nil {
		return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
	}
	filter.Sort = sort

	if filter.MinPrice, err = validators.ParseQueryDecimal(r, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = validators.ParseQueryDecimal(r, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.Featured, err = validators.ParseQueryBool(r, "featured"); err != nil {
		return filter, err
	}
	return filter, nil
}

// ProductFeatured returns every featured product.
func ProductFeatured(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		items, err := svc.Featured(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, items)
	}
}

// ProductRecommended suggests products related to the ids in ?ids=, usually
// the cart contents.
func ProductRecommended(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		ids, err := validators.ParseQueryIDs(r, "ids")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", product.DefaultSuggestionLimit, 1, 20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Recommended(r.Context(), ids, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, items)
	}
}

// ProductFetch returns one product.
func ProductFetch(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		id, err := validators.URLParamID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, item)
	}
}

// ProductRelated returns products from the same category.
func ProductRelated(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		id, err := validators.URLParamID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", product.DefaultSuggestionLimit, 1, 20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Related(r.Context(), id, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, items)
	}
}

// AdminProductCreate adds a catalog product.
func AdminProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), product.CreateInput{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       payload.Price,
			Category:    payload.Category,
			Images:      payload.Images,
			Featured:    payload.Featured,
			Stock:       payload.Stock,
			Rating:      payload.Rating,
			ReviewCount: payload.ReviewCount,
			Variations:  payload.Variations,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(r.Context(), w, http.StatusCreated, created)
	}
}

// AdminProductUpdate applies a partial product update.
func AdminProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		id, err := validators.URLParamID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), id, product.UpdateInput{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       payload.Price,
			Category:    payload.Category,
			Images:      payload.Images,
			Featured:    payload.Featured,
			Stock:       payload.Stock,
			Rating:      payload.Rating,
			ReviewCount: payload.ReviewCount,
			Variations:  payload.Variations,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, updated)
	}
}

// AdminProductDelete removes a catalog product.
func AdminProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product")
			return
		}
		id, err := validators.URLParamID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
