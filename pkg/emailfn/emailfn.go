// Package emailfn invokes the order status email function, either remotely
// over HTTP or in-process.
package emailfn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/types"
)

const (
	defaultTimeout          = 15 * time.Second
	responseReadLimit int64 = 64 * 1024
)

var errFunctionURLRequired = errors.New("email function url is required")

// OrderDetails is the order snapshot rendered into the email.
type OrderDetails struct {
	CreatedAt         time.Time             `json:"createdAt"`
	EstimatedDelivery time.Time             `json:"estimatedDelivery"`
	Items             []types.LineItem      `json:"items"`
	Subtotal          decimal.Decimal       `json:"subtotal"`
	Shipping          decimal.Decimal       `json:"shipping"`
	Tax               decimal.Decimal       `json:"tax"`
	Total             decimal.Decimal       `json:"total"`
	ShippingAddress   types.ShippingAddress `json:"shippingAddress"`
}

// Request is the function's JSON body.
type Request struct {
	OrderID       string        `json:"orderId"`
	CustomerEmail string        `json:"customerEmail"`
	Status        string        `json:"status"`
	OrderDetails  *OrderDetails `json:"orderDetails,omitempty"`
}

// Response is the function's JSON answer. Success false carries Error.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	EmailID string `json:"emailId,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// Invoker runs the email function. A non-nil error means the call itself
// failed; a delivered call that the function rejected returns Success false.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// InvokerFunc adapts an in-process handler to Invoker.
type InvokerFunc func(ctx context.Context, req Request) (*Response, error)

func (f InvokerFunc) Invoke(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Client invokes a deployed function over HTTP.
type Client struct {
	httpClient *http.Client
	url        string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the default client's timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a client for the function deployed at url.
func NewClient(url string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, errFunctionURLRequired
	}
	client := &Client{
		url:        trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Invoke posts the request and decodes the function's answer regardless of
// status code.
func (c *Client) Invoke(ctx context.Context, request Request) (*Response, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal email function request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build email function request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute email function request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read email function response")
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %w", resp.StatusCode, err),
			"decode email function response")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		out.Success = false
		if out.Error == "" {
			out.Error = fmt.Sprintf("email function returned status %d", resp.StatusCode)
		}
	}
	return &out, nil
}

// ForOrder builds the request for an order status change.
func ForOrder(orderID, customerEmail, status string, details OrderDetails) Request {
	return Request{
		OrderID:       orderID,
		CustomerEmail: customerEmail,
		Status:        status,
		OrderDetails:  &details,
	}
}
