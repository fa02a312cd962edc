package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/artisanmarket/storefront/internal/checkout"
	"github.com/artisanmarket/storefront/pkg/db/models"
	"github.com/artisanmarket/storefront/pkg/enums"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
)

type stubCheckout struct {
	checkout.Service

	state        *checkout.State
	err          error
	shipping     checkout.ShippingInput
	payment      checkout.PaymentInput
	accountEmail string
	order        *models.Order
	discarded    string
}

func (s *stubCheckout) Get(context.Context, string) (*checkout.State, error) { return s.state, s.err }

func (s *stubCheckout) UpdateShipping(_ context.Context, _ string, input checkout.ShippingInput) (*checkout.State, error) {
	s.shipping = input
	return s.state, s.err
}

func (s *stubCheckout) UpdatePayment(_ context.Context, _ string, input checkout.PaymentInput) (*checkout.State, error) {
	s.payment = input
	return s.state, s.err
}

func (s *stubCheckout) Advance(context.Context, string) (*checkout.State, error) { return s.state, s.err }

func (s *stubCheckout) PlaceOrder(_ context.Context, _ string, accountEmail string) (*models.Order, error) {
	s.accountEmail = accountEmail
	return s.order, s.err
}

func (s *stubCheckout) Discard(_ context.Context, sessionID string) error {
	s.discarded = sessionID
	return s.err
}

func TestCheckoutShippingSanitizesInput(t *testing.T) {
	stub := &stubCheckout{state: &checkout.State{Draft: checkout.DraftView{CurrentStep: enums.CheckoutStepShipping}}}
	body := `{"shippingAddress":{"firstName":"  Ada  ","lastName":"Lovelace","address":"1 Loom St","city":"London","state":"LDN","zipCode":"N1"},"isGuest":true,"guestEmail":"ada@example.com"}`
	req := withSession(newRequest(http.MethodPut, "/api/v1/checkout/shipping", strings.NewReader(body)), "sess-1", "")
	resp := httptest.NewRecorder()
	CheckoutShipping(stub, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.shipping.ShippingAddress.FirstName != "Ada" {
		t.Fatalf("expected trimmed first name, got %q", stub.shipping.ShippingAddress.FirstName)
	}
	if !stub.shipping.IsGuest || stub.shipping.GuestEmail != "ada@example.com" {
		t.Fatalf("unexpected guest fields %+v", stub.shipping)
	}
}

func TestCheckoutShippingRejectsInvalidGuestEmail(t *testing.T) {
	stub := &stubCheckout{}
	req := withSession(newRequest(http.MethodPut, "/api/v1/checkout/shipping", strings.NewReader(`{"isGuest":true,"guestEmail":"not-an-email"}`)), "sess-1", "")
	resp := httptest.NewRecorder()
	CheckoutShipping(stub, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutAdvanceSurfacesStepConflict(t *testing.T) {
	stub := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeStateConflict, "Please fill in all required shipping information")}
	resp := httptest.NewRecorder()
	CheckoutAdvance(stub, nil).ServeHTTP(resp, withSession(newRequest(http.MethodPost, "/api/v1/checkout/advance", nil), "sess-1", ""))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected error code %s", code)
	}
}

func TestCheckoutPlaceOrderPassesAccountEmail(t *testing.T) {
	stub := &stubCheckout{order: &models.Order{OrderID: "AM2026-1234", Total: decimal.RequireFromString("108.00")}}
	req := withSession(newRequest(http.MethodPost, "/api/v1/checkout/orders", nil), "sess-1", "member@example.com")
	resp := httptest.NewRecorder()
	CheckoutPlaceOrder(stub, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if stub.accountEmail != "member@example.com" {
		t.Fatalf("expected account email forwarded, got %q", stub.accountEmail)
	}
	var order models.Order
	decodeData(t, resp, &order)
	if order.OrderID != "AM2026-1234" {
		t.Fatalf("unexpected order id %s", order.OrderID)
	}
}

func TestCheckoutPlaceOrderInFlight(t *testing.T) {
	stub := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeConflict, "Your order is already being placed")}
	resp := httptest.NewRecorder()
	CheckoutPlaceOrder(stub, nil).ServeHTTP(resp, withSession(newRequest(http.MethodPost, "/api/v1/checkout/orders", nil), "sess-1", ""))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCheckoutDiscard(t *testing.T) {
	stub := &stubCheckout{}
	resp := httptest.NewRecorder()
	CheckoutDiscard(stub, nil).ServeHTTP(resp, withSession(newRequest(http.MethodDelete, "/api/v1/checkout", nil), "sess-9", ""))

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if stub.discarded != "sess-9" {
		t.Fatalf("expected draft for sess-9 discarded, got %q", stub.discarded)
	}
}
