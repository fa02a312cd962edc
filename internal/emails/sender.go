// Package emails implements the order status email function: it validates
// the request, renders the status template and hands it to Resend.
package emails

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/artisanmarket/storefront/pkg/emailfn"
	"github.com/artisanmarket/storefront/pkg/enums"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/resend"
)

const (
	msgMissingFields    = "Missing required fields: orderId, customerEmail, status, and orderDetails are required"
	msgInvalidEmail     = "Invalid email format"
	msgInvalidStatus    = "Invalid status. Must be one of: processing, shipped, delivered, cancelled"
	msgNotConfigured    = "Email service not configured"
	msgSendFailed       = "Failed to send email"
	msgServerError      = "Server error"
	msgSent             = "Order status email sent successfully"
	msgMethodNotAllowed = "Method not allowed"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Mailer delivers a rendered email.
type Mailer interface {
	Send(ctx context.Context, email resend.Email) (*resend.SendResult, error)
}

// Result is the function's HTTP status paired with its JSON body.
type Result struct {
	Status   int
	Response emailfn.Response
}

// Sender runs the order status email function.
type Sender struct {
	mailer Mailer
	from   string
	logg   *logger.Logger
	now    func() time.Time
}

// NewSender builds the function. A nil mailer is allowed; every request then
// fails with "Email service not configured".
func NewSender(mailer Mailer, from string, logg *logger.Logger) *Sender {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Sender{
		mailer: mailer,
		from:   from,
		logg:   logg,
		now:    time.Now,
	}
}

// Handle validates, renders and sends one status email.
func (s *Sender) Handle(ctx context.Context, req emailfn.Request) Result {
	if strings.TrimSpace(req.OrderID) == "" || strings.TrimSpace(req.CustomerEmail) == "" ||
		strings.TrimSpace(req.Status) == "" || req.OrderDetails == nil {
		return failure(http.StatusBadRequest, msgMissingFields, "")
	}
	if !emailPattern.MatchString(req.CustomerEmail) {
		return failure(http.StatusBadRequest, msgInvalidEmail, "")
	}

	status := enums.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	content, ok := copyFor(status, req.OrderID, req.OrderDetails)
	if !ok {
		return failure(http.StatusBadRequest, msgInvalidStatus, "")
	}
	if s.mailer == nil {
		return failure(http.StatusInternalServerError, msgNotConfigured, "")
	}

	ctx = s.logg.WithOrderID(ctx, req.OrderID)

	html, err := render(content, req, status, s.now())
	if err != nil {
		s.logg.Error(ctx, "emails.render_failed", err)
		return failure(http.StatusInternalServerError, msgServerError, err.Error())
	}

	sent, err := s.mailer.Send(ctx, resend.Email{
		From:    s.from,
		To:      []string{req.CustomerEmail},
		Subject: content.subject,
		HTML:    html,
	})
	if err != nil {
		var apiErr *resend.APIError
		if errors.As(err, &apiErr) {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"upstream_status": apiErr.StatusCode,
				"reason":          apiErr.Message,
			}), "emails.send_rejected")
			code := apiErr.StatusCode
			if code < http.StatusBadRequest {
				code = http.StatusBadGateway
			}
			return failure(code, msgSendFailed, apiErr.Message)
		}
		s.logg.Error(ctx, "emails.send_failed", err)
		return failure(http.StatusInternalServerError, msgServerError, err.Error())
	}

	s.logg.Info(s.logg.WithField(ctx, "email_id", sent.ID), "emails.sent")
	return Result{
		Status: http.StatusOK,
		Response: emailfn.Response{
			Success: true,
			Message: msgSent,
			EmailID: sent.ID,
		},
	}
}

// Invoke runs the function in-process. Rejections come back as a Response
// with Success false, never as an error.
func (s *Sender) Invoke(ctx context.Context, req emailfn.Request) (*emailfn.Response, error) {
	res := s.Handle(ctx, req)
	return &res.Response, nil
}

var _ emailfn.Invoker = (*Sender)(nil)

func failure(status int, msg, details string) Result {
	return Result{
		Status: status,
		Response: emailfn.Response{
			Success: false,
			Error:   msg,
			Details: details,
		},
	}
}
