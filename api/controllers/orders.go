package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/artisanmarket/storefront/api/responses"
	"github.com/artisanmarket/storefront/api/validators"
	"github.com/artisanmarket/storefront/internal/orders"
	"github.com/artisanmarket/storefront/pkg/enums"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/pagination"
	"github.com/artisanmarket/storefront/pkg/types"
)

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type updateOrderRequest struct {
	ShippingAddress *types.ShippingAddress `json:"shippingAddress"`
	BillingAddress  *types.BillingAddress  `json:"billingAddress"`
	PaymentMethod   *string                `json:"paymentMethod" validate:"omitempty,max=100"`
	CustomerEmail   *string                `json:"customerEmail" validate:"omitempty,email"`
}

// OrderFetch returns a placed order for the confirmation page.
func OrderFetch(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "order")
			return
		}
		order, err := svc.Get(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, order)
	}
}

// AdminOrderList pages through orders, optionally for one customer email.
func AdminOrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "order")
			return
		}
		q := r.URL.Query()
		result, err := svc.List(r.Context(), orders.ListFilter{
			CustomerEmail: strings.TrimSpace(q.Get("email")),
			Page:          pagination.ParseParams(q.Get("limit"), q.Get("offset")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, result)
	}
}

// AdminOrderUpdate edits addresses, payment method or customer email.
func AdminOrderUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "order")
			return
		}
		var payload updateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Update(r.Context(), chi.URLParam(r, "orderId"), orders.UpdateInput{
			ShippingAddress: payload.ShippingAddress,
			BillingAddress:  payload.BillingAddress,
			PaymentMethod:   payload.PaymentMethod,
			CustomerEmail:   payload.CustomerEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, order)
	}
}

// AdminOrderStatus changes an order's status. Customers are emailed about
// every status after confirmed; a failed email is reported as a notice and
// does not fail the update.
func AdminOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "order")
			return
		}
		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(strings.ToLower(strings.TrimSpace(payload.Status)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		order, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, order)
	}
}

// AdminOrderDelete removes an order.
func AdminOrderDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "order")
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "orderId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
