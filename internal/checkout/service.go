package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artisanmarket/storefront/internal/cart"
	"github.com/artisanmarket/storefront/internal/orders"
	"github.com/artisanmarket/storefront/pkg/db/models"
	"github.com/artisanmarket/storefront/pkg/enums"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/metrics"
	"github.com/artisanmarket/storefront/pkg/pricing"
	"github.com/artisanmarket/storefront/pkg/types"
)

const (
	msgShippingIncomplete = "Please fill in all required shipping information"
	msgGuestEmailMissing  = "Please enter your email address"
	msgPaymentIncomplete  = "Please fill in all payment information"
	msgPlaceOrderFailed   = "Failed to place order. Please try again."
	msgCartEmpty          = "Your cart is empty"
	msgSubmissionInFlight = "Your order is already being placed"
)

// State is everything the checkout page renders.
type State struct {
	Draft   DraftView       `json:"draft"`
	Cart    cart.Snapshot   `json:"cart"`
	Summary pricing.Summary `json:"summary"`
}

// ShippingInput replaces the shipping step's form.
type ShippingInput struct {
	ShippingAddress types.ShippingAddress
	IsGuest         bool
	GuestEmail      string
}

// PaymentInput replaces the payment step's form.
type PaymentInput struct {
	CardNumber         string
	ExpiryDate         string
	CVV                string
	CardName           string
	BillingAddressSame bool
	BillingAddress     types.BillingAddress
}

// OrderCreator is the slice of the order service checkout needs.
type OrderCreator interface {
	Create(ctx context.Context, input orders.CreateInput) (*models.Order, error)
}

// Service drives a session through shipping, payment and review to a placed
// order. Steps only move forward through their guards.
type Service interface {
	Get(ctx context.Context, sessionID string) (*State, error)
	UpdateShipping(ctx context.Context, sessionID string, input ShippingInput) (*State, error)
	UpdatePayment(ctx context.Context, sessionID string, input PaymentInput) (*State, error)
	Advance(ctx context.Context, sessionID string) (*State, error)
	Back(ctx context.Context, sessionID string) (*State, error)
	PlaceOrder(ctx context.Context, sessionID, accountEmail string) (*models.Order, error)
	Discard(ctx context.Context, sessionID string) error
}

// Deps are the collaborators of the checkout service.
type Deps struct {
	Carts   cart.Service
	Orders  OrderCreator
	Drafts  DraftStore
	Guard   SubmissionGuard
	// Pricing defaults to pricing.DefaultPolicy when zero.
	Pricing pricing.Policy
	Logger  *logger.Logger
	Metrics *metrics.Storefront
	// NewToken mints submission tokens; defaults to random UUIDs.
	NewToken func() string
	Now      func() time.Time
}

type service struct {
	carts    cart.Service
	orders   OrderCreator
	drafts   DraftStore
	guard    SubmissionGuard
	pricing  pricing.Policy
	logg     *logger.Logger
	metrics  *metrics.Storefront
	newToken func() string
	now      func() time.Time
}

// NewService constructs the checkout service.
func NewService(deps Deps) (Service, error) {
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if deps.Drafts == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if deps.Guard == nil {
		return nil, fmt.Errorf("submission guard required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Pricing == (pricing.Policy{}) {
		deps.Pricing = pricing.DefaultPolicy()
	}
	if deps.NewToken == nil {
		deps.NewToken = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{
		carts:    deps.Carts,
		orders:   deps.Orders,
		drafts:   deps.Drafts,
		guard:    deps.Guard,
		pricing:  deps.Pricing,
		logg:     deps.Logger,
		metrics:  deps.Metrics,
		newToken: deps.NewToken,
		now:      deps.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*State, error) {
	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.state(ctx, sessionID, draft), nil
}

func (s *service) UpdateShipping(ctx context.Context, sessionID string, input ShippingInput) (*State, error) {
	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft.CurrentStep != enums.CheckoutStepShipping {
		return nil, stepConflict("Go back to the shipping step to change shipping details", draft.CurrentStep)
	}
	draft.ShippingAddress = input.ShippingAddress
	if strings.TrimSpace(draft.ShippingAddress.Country) == "" {
		draft.ShippingAddress.Country = defaultCountry
	}
	draft.IsGuest = input.IsGuest
	draft.GuestEmail = strings.TrimSpace(input.GuestEmail)
	return s.saveAndRender(ctx, sessionID, draft)
}

func (s *service) UpdatePayment(ctx context.Context, sessionID string, input PaymentInput) (*State, error) {
	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft.CurrentStep != enums.CheckoutStepPayment {
		return nil, stepConflict("Payment details can only be changed on the payment step", draft.CurrentStep)
	}
	billing := input.BillingAddress
	if strings.TrimSpace(billing.Country) == "" {
		billing.Country = defaultCountry
	}
	draft.PaymentDetails = PaymentDetails{
		CardNumber:         input.CardNumber,
		ExpiryDate:         input.ExpiryDate,
		CVV:                input.CVV,
		CardName:           input.CardName,
		BillingAddressSame: input.BillingAddressSame,
		BillingAddress:     billing,
	}
	return s.saveAndRender(ctx, sessionID, draft)
}

// Advance moves to the next step when the current step's guard passes.
// Entering review mints the submission token.
func (s *service) Advance(ctx context.Context, sessionID string) (*State, error) {
	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	from := draft.CurrentStep
	if s.carts.Open(ctx, sessionID).ItemCount() == 0 {
		s.metrics.IncCheckoutTransition(from.String(), false)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, msgCartEmpty)
	}

	next, ok := from.Next()
	if !ok {
		s.metrics.IncCheckoutTransition(from.String(), false)
		return nil, stepConflict("Review is the last step; place the order to continue", from)
	}
	if err := guardStep(draft, from); err != nil {
		s.metrics.IncCheckoutTransition(from.String(), false)
		return nil, err
	}

	draft.CurrentStep = next
	if next == enums.CheckoutStepReview && draft.SubmissionToken == "" {
		draft.SubmissionToken = s.newToken()
	}
	state, err := s.saveAndRender(ctx, sessionID, draft)
	if err != nil {
		return nil, err
	}
	s.metrics.IncCheckoutTransition(from.String(), true)
	return state, nil
}

// Back returns to the previous step. Leaving review drops the submission
// token so edited details are submitted as a new order.
func (s *service) Back(ctx context.Context, sessionID string) (*State, error) {
	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	prev, ok := draft.CurrentStep.Previous()
	if !ok {
		return nil, stepConflict("Shipping is the first step", draft.CurrentStep)
	}
	if draft.CurrentStep == enums.CheckoutStepReview {
		draft.SubmissionToken = ""
	}
	draft.CurrentStep = prev
	return s.saveAndRender(ctx, sessionID, draft)
}

// PlaceOrder turns the reviewed draft and the session's cart into an order.
// The submission token keys order creation, so a retried submission returns
// the order the first attempt created.
func (s *service) PlaceOrder(ctx context.Context, sessionID, accountEmail string) (*models.Order, error) {
	started := s.now()
	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft.CurrentStep != enums.CheckoutStepReview {
		return nil, stepConflict("Complete shipping and payment before placing the order", draft.CurrentStep)
	}
	if err := guardStep(draft, enums.CheckoutStepShipping); err != nil {
		return nil, err
	}
	if err := guardStep(draft, enums.CheckoutStepPayment); err != nil {
		return nil, err
	}
	email := draft.customerEmail(accountEmail)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgGuestEmailMissing)
	}

	store := s.carts.Open(ctx, sessionID)
	items := store.Items()
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, msgCartEmpty)
	}

	token := draft.SubmissionToken
	if token == "" {
		token = s.newToken()
		draft.SubmissionToken = token
		if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgPlaceOrderFailed)
		}
	}
	ctx = s.logg.WithField(ctx, "submission_token", token)

	acquired, err := s.guard.Acquire(ctx, token)
	if err != nil {
		s.logg.Error(ctx, "checkout.guard_failed", err)
		s.metrics.ObserveOrderSubmission("failed", s.now().Sub(started))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgPlaceOrderFailed)
	}
	if !acquired {
		s.metrics.ObserveOrderSubmission("in_flight", s.now().Sub(started))
		return nil, pkgerrors.New(pkgerrors.CodeConflict, msgSubmissionInFlight)
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), token); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.guard_release_failed")
		}
	}()

	summary := s.pricing.Summarize(store.Total())
	order, err := s.orders.Create(ctx, orders.CreateInput{
		Items:           items,
		Subtotal:        summary.Subtotal,
		Shipping:        summary.Shipping,
		Tax:             summary.Tax,
		Total:           summary.Total,
		ShippingAddress: draft.ShippingAddress,
		BillingAddress:  draft.billing(),
		PaymentMethod:   MaskedCardNumber(draft.PaymentDetails.CardNumber),
		CustomerEmail:   email,
		IsGuest:         draft.IsGuest,
		IdempotencyKey:  token,
	})
	if err != nil {
		s.logg.Error(ctx, "checkout.place_order_failed", err)
		s.metrics.ObserveOrderSubmission("failed", s.now().Sub(started))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgPlaceOrderFailed)
	}

	store.Clear(ctx)
	if err := s.drafts.Discard(ctx, sessionID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.draft_discard_failed")
	}
	s.metrics.ObserveOrderSubmission("placed", s.now().Sub(started))
	s.logg.Info(s.logg.WithOrderID(ctx, order.OrderID), "checkout.order_placed")
	return order, nil
}

func (s *service) Discard(ctx context.Context, sessionID string) error {
	if err := s.drafts.Discard(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discard checkout")
	}
	return nil
}

func (s *service) load(ctx context.Context, sessionID string) (*Draft, error) {
	draft, err := s.drafts.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout")
	}
	if draft == nil || !draft.CurrentStep.IsValid() {
		draft = NewDraft()
	}
	return draft, nil
}

func (s *service) saveAndRender(ctx context.Context, sessionID string, draft *Draft) (*State, error) {
	draft.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout")
	}
	return s.state(ctx, sessionID, draft), nil
}

func (s *service) state(ctx context.Context, sessionID string, draft *Draft) *State {
	snapshot := s.carts.Open(ctx, sessionID).Snapshot()
	return &State{
		Draft:   draft.View(),
		Cart:    snapshot,
		Summary: s.pricing.Summarize(snapshot.Total),
	}
}

// guardStep checks the fields required to leave step.
func guardStep(draft *Draft, step enums.CheckoutStep) error {
	switch step {
	case enums.CheckoutStepShipping:
		if missing := draft.ShippingAddress.MissingRequired(); len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, msgShippingIncomplete).WithDetails(missingFields(missing))
		}
		if draft.IsGuest && strings.TrimSpace(draft.GuestEmail) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, msgGuestEmailMissing).
				WithDetails(missingFields([]string{"guestEmail"}))
		}
	case enums.CheckoutStepPayment:
		if missing := draft.PaymentDetails.missingPayment(); len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, msgPaymentIncomplete).WithDetails(missingFields(missing))
		}
	}
	return nil
}

func missingFields(names []string) []pkgerrors.FieldError {
	out := make([]pkgerrors.FieldError, 0, len(names))
	for _, name := range names {
		out = append(out, pkgerrors.FieldError{Field: name, Message: "required"})
	}
	return out
}

func stepConflict(message string, current enums.CheckoutStep) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, message).
		WithDetails(map[string]string{"currentStep": current.String()})
}
