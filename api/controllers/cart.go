package controllers

import (
	"context"
	"net/http"

	"github.com/artisanmarket/storefront/api/responses"
	"github.com/artisanmarket/storefront/api/validators"
	"github.com/artisanmarket/storefront/internal/cart"
	"github.com/artisanmarket/storefront/pkg/db/models"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/types"
)

// ProductGetter loads the catalog product a cart line is built from.
type ProductGetter interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
}

type addCartItemRequest struct {
	ProductID         int64           `json:"productId" validate:"required,gt=0"`
	Quantity          int             `json:"quantity" validate:"omitempty,gte=1"`
	SelectedVariation types.Variation `json:"selectedVariation"`
}

type updateCartItemRequest struct {
	ProductID         int64           `json:"productId" validate:"required,gt=0"`
	Quantity          int             `json:"quantity" validate:"gte=0"`
	SelectedVariation types.Variation `json:"selectedVariation"`
}

type removeCartItemRequest struct {
	ProductID         int64           `json:"productId" validate:"required,gt=0"`
	SelectedVariation types.Variation `json:"selectedVariation"`
}

// CartFetch returns the session's cart.
func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "cart")
			return
		}
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(r.Context(), w, svc.Open(r.Context(), sid).Snapshot())
	}
}

// CartAddItem adds a catalog product to the cart. Adding a product and
// variation already in the cart increases that line's quantity.
func CartAddItem(svc cart.Service, products ProductGetter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || products == nil {
			unavailable(w, r, logg, "cart")
			return
		}
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.Get(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := svc.Open(r.Context(), sid)
		store.AddItem(r.Context(), *product, payload.Quantity, payload.SelectedVariation)
		responses.WriteSuccess(r.Context(), w, store.Snapshot())
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "cart")
			return
		}
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := svc.Open(r.Context(), sid)
		store.UpdateQuantity(r.Context(), payload.ProductID, payload.SelectedVariation, payload.Quantity)
		responses.WriteSuccess(r.Context(), w, store.Snapshot())
	}
}

// CartRemoveItem drops the line matching product and variation, if any.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "cart")
			return
		}
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		var payload removeCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := svc.Open(r.Context(), sid)
		store.RemoveItem(r.Context(), payload.ProductID, payload.SelectedVariation)
		responses.WriteSuccess(r.Context(), w, store.Snapshot())
	}
}

// CartClear empties the cart.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "cart")
			return
		}
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}
		store := svc.Open(r.Context(), sid)
		store.Clear(r.Context())
		responses.WriteSuccess(r.Context(), w, store.Snapshot())
	}
}
