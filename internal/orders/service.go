package orders

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/artisanmarket/storefront/internal/notices"
	"github.com/artisanmarket/storefront/pkg/db/models"
	"github.com/artisanmarket/storefront/pkg/emailfn"
	"github.com/artisanmarket/storefront/pkg/enums"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/metrics"
	"github.com/artisanmarket/storefront/pkg/pagination"
	"github.com/artisanmarket/storefront/pkg/types"
)

const (
	// DefaultDeliveryDays is the estimated delivery offset for new orders.
	DefaultDeliveryDays = 7

	maxOrderIDAttempts = 5

	emailFailedMessage  = "Order updated, but email notification failed to send"
	emailErroredMessage = "Order updated, but email notification encountered an error"
)

// Service manages placed orders.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, orderID string) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, orderID string, input UpdateInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*models.Order, error)
	Delete(ctx context.Context, orderID string) error
}

// IDGenerator returns a candidate public order id for the given time.
type IDGenerator func(now time.Time) string

// GenerateOrderID builds ids like AM2026-4821.
func GenerateOrderID(now time.Time) string {
	return fmt.Sprintf("AM%d-%d", now.Year(), 1000+rand.Intn(9000))
}

// Options tune order creation.
type Options struct {
	DeliveryDays int
	Now          func() time.Time
	NewID        IDGenerator
}

type service struct {
	repo     Repository
	email    emailfn.Invoker
	notifier notices.Notifier
	logg     *logger.Logger
	metrics  *metrics.Storefront

	deliveryDays int
	now          func() time.Time
	newID        IDGenerator
}

// NewService constructs an order service. The email invoker may be nil, in
// which case status changes send no email.
func NewService(repo Repository, email emailfn.Invoker, notifier notices.Notifier, logg *logger.Logger, m *metrics.Storefront, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.DeliveryDays <= 0 {
		opts.DeliveryDays = DefaultDeliveryDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = GenerateOrderID
	}
	return &service{
		repo:         repo,
		email:        email,
		notifier:     notifier,
		logg:         logg,
		metrics:      m,
		deliveryDays: opts.DeliveryDays,
		now:          opts.Now,
		newID:        opts.NewID,
	}, nil
}

// Create stores a confirmed order. With an idempotency key, a repeated call
// returns the order created by the first one.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	if key != "" {
		if existing, err := s.byIdempotencyKey(ctx, key); err != nil || existing != nil {
			return existing, err
		}
	}

	now := s.now().UTC()
	order := &models.Order{
		Items:             input.Items,
		Subtotal:          input.Subtotal,
		Shipping:          input.Shipping,
		Tax:               input.Tax,
		Total:             input.Total,
		ShippingAddress:   input.ShippingAddress,
		BillingAddress:    input.BillingAddress,
		PaymentMethod:     input.PaymentMethod,
		CustomerEmail:     types.NormalizeEmail(input.CustomerEmail),
		IsGuest:           input.IsGuest,
		Status:            enums.OrderStatusConfirmed,
		EstimatedDelivery: now.AddDate(0, 0, s.deliveryDays),
		CreatedAt:         now,
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	for attempt := 0; attempt < maxOrderIDAttempts; attempt++ {
		order.ID = 0
		order.OrderID = s.newID(now)
		err := s.repo.Create(ctx, order)
		if err == nil {
			return order, nil
		}
		if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return nil, wrapRepoErr(err, "create order")
		}
		if key != "" {
			if existing, lookupErr := s.byIdempotencyKey(ctx, key); lookupErr != nil || existing != nil {
				return existing, lookupErr
			}
		}
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.OrderID), "orders.id_collision")
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique order id")
}

func (s *service) byIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	existing, err := s.repo.GetByIdempotencyKey(ctx, key)
	if err == nil {
		return existing, nil
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return nil, nil
	}
	return nil, wrapRepoErr(err, "load order by idempotency key")
}

func (s *service) Get(ctx context.Context, orderID string) (*models.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, wrapRepoErr(err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter.Page = filter.Page.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, wrapRepoErr(err, "list orders")
	}
	if items == nil {
		items = []models.Order{}
	}
	return &ListResult{
		Items: items,
		Page:  pagination.Page{Limit: filter.Page.Limit, Offset: filter.Page.Offset, Total: total},
	}, nil
}

func (s *service) Update(ctx context.Context, orderID string, input UpdateInput) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	input.apply(order)
	order.CustomerEmail = types.NormalizeEmail(order.CustomerEmail)
	if order.CustomerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, wrapRepoErr(err, "update order")
	}
	return order, nil
}

// UpdateStatus persists the new status, then emails the customer. An email
// failure does not undo the update; it is reported as an info notice.
func (s *service) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", status)
	}
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Status = status
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, wrapRepoErr(err, "update order status")
	}

	if status.Notifiable() && s.email != nil {
		s.sendStatusEmail(s.logg.WithOrderID(ctx, order.OrderID), order)
	}
	return order, nil
}

func (s *service) sendStatusEmail(ctx context.Context, order *models.Order) {
	req := emailfn.ForOrder(order.OrderID, order.CustomerEmail, order.Status.String(), emailfn.OrderDetails{
		CreatedAt:         order.CreatedAt,
		EstimatedDelivery: order.EstimatedDelivery,
		Items:             order.Items,
		Subtotal:          order.Subtotal,
		Shipping:          order.Shipping,
		Tax:               order.Tax,
		Total:             order.Total,
		ShippingAddress:   order.ShippingAddress,
	})

	resp, err := s.email.Invoke(ctx, req)
	switch {
	case err != nil:
		s.metrics.IncStatusEmail(order.Status.String(), false)
		s.logg.Error(ctx, "orders.status_email_error", err)
		s.notifier.Notify(ctx, enums.NoticeLevelInfo, emailErroredMessage)
	case resp == nil || !resp.Success:
		s.metrics.IncStatusEmail(order.Status.String(), false)
		reason := ""
		if resp != nil {
			reason = resp.Error
		}
		s.logg.Warn(s.logg.WithField(ctx, "reason", reason), "orders.status_email_failed")
		s.notifier.Notify(ctx, enums.NoticeLevelInfo, emailFailedMessage)
	default:
		s.metrics.IncStatusEmail(order.Status.String(), true)
		s.logg.Info(s.logg.WithField(ctx, "email_id", resp.EmailID), "orders.status_email_sent")
	}
}

func (s *service) Delete(ctx context.Context, orderID string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(orderID)); err != nil {
		return wrapRepoErr(err, "delete order")
	}
	return nil
}

func wrapRepoErr(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
