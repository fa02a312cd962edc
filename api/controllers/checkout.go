package controllers

import (
	"net/http"

	"github.com/artisanmarket/storefront/api/middleware"
	"github.com/artisanmarket/storefront/api/responses"
	"github.com/artisanmarket/storefront/api/validators"
	"github.com/artisanmarket/storefront/internal/checkout"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/types"
)

type shippingRequest struct {
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	IsGuest         bool                  `json:"isGuest"`
	GuestEmail      string                `json:"guestEmail" validate:"omitempty,email"`
}

type paymentRequest struct {
	CardNumber         string               `json:"cardNumber"`
	ExpiryDate         string               `json:"expiryDate"`
	CVV                string               `json:"cvv"`
	CardName           string               `json:"cardName"`
	BillingAddressSame bool                 `json:"billingAddressSame"`
	BillingAddress     types.BillingAddress `json:"billingAddress"`
}

// checkoutStep wraps a step transition that returns the refreshed state.
type checkoutStep func(svc checkout.Service, r *http.Request, sessionID string) (*checkout.State, error)

func checkoutHandler(svc checkout.Service, logg *logger.Logger, step checkoutStep) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}
		state, err := step(svc, r, sid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, state)
	}
}

// CheckoutFetch returns the draft, cart and price summary.
func CheckoutFetch(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, func(svc checkout.Service, r *http.Request, sid string) (*checkout.State, error) {
		return svc.Get(r.Context(), sid)
	})
}

// CheckoutShipping replaces the shipping form.
func CheckoutShipping(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, func(svc checkout.Service, r *http.Request, sid string) (*checkout.State, error) {
		var payload shippingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.UpdateShipping(r.Context(), sid, checkout.ShippingInput{
			ShippingAddress: sanitizeShipping(payload.ShippingAddress),
			IsGuest:         payload.IsGuest,
			GuestEmail:      payload.GuestEmail,
		})
	})
}

// CheckoutPayment replaces the payment form. The CVV is kept in the draft
// but never returned.
func CheckoutPayment(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, func(svc checkout.Service, r *http.Request, sid string) (*checkout.State, error) {
		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.UpdatePayment(r.Context(), sid, checkout.PaymentInput{
			CardNumber:         payload.CardNumber,
			ExpiryDate:         payload.ExpiryDate,
			CVV:                payload.CVV,
			CardName:           validators.SanitizeString(payload.CardName, maxNameLength),
			BillingAddressSame: payload.BillingAddressSame,
			BillingAddress:     payload.BillingAddress,
		})
	})
}

// CheckoutAdvance moves to the next step when the current one is complete.
func CheckoutAdvance(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, func(svc checkout.Service, r *http.Request, sid string) (*checkout.State, error) {
		return svc.Advance(r.Context(), sid)
	})
}

// CheckoutBack returns to the previous step.
func CheckoutBack(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, func(svc checkout.Service, r *http.Request, sid string) (*checkout.State, error) {
		return svc.Back(r.Context(), sid)
	})
}

// CheckoutPlaceOrder submits the reviewed draft. Repeating the call for the
// same draft returns the order that was already placed.
func CheckoutPlaceOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		order, err := svc.PlaceOrder(r.Context(), sid, middleware.AccountEmailFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, order.OrderID)
			logg.Info(ctx, "checkout.order_placed")
		}
		responses.WriteSuccessStatus(ctx, w, http.StatusCreated, order)
	}
}

// CheckoutDiscard drops the draft and starts over at shipping.
func CheckoutDiscard(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}
		if err := svc.Discard(r.Context(), sid); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

const maxNameLength = 120

func sanitizeShipping(a types.ShippingAddress) types.ShippingAddress {
	a.FirstName = validators.SanitizeString(a.FirstName, maxNameLength)
	a.LastName = validators.SanitizeString(a.LastName, maxNameLength)
	a.Address = validators.SanitizeString(a.Address, 255)
	a.City = validators.SanitizeString(a.City, maxNameLength)
	return a
}
