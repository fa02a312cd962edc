package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/storefront/pkg/emailfn"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/resend"
	"github.com/artisanmarket/storefront/pkg/types"
)

type fakeMailer struct {
	sent []resend.Email
	err  error
}

func (f *fakeMailer) Send(_ context.Context, email resend.Email) (*resend.SendResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, email)
	return &resend.SendResult{ID: "em_1"}, nil
}

func newTestSender(mailer Mailer) *Sender {
	s := NewSender(mailer, "Artisan Market <orders@artisanmarket.test>", logger.Nop())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func sampleRequest(status string) emailfn.Request {
	return emailfn.ForOrder("AM1700000000000-1234", "jo@example.com", status, emailfn.OrderDetails{
		CreatedAt:         time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		EstimatedDelivery: time.Date(2026, 2, 17, 9, 0, 0, 0, time.UTC),
		Items: []types.LineItem{{
			ProductID:         3,
			Name:              "Walnut Bowl",
			Price:             decimal.RequireFromString("42.5"),
			Quantity:          2,
			SelectedVariation: types.Variation{"Size": "Large"},
		}},
		Subtotal: decimal.RequireFromString("85"),
		Shipping: decimal.RequireFromString("9.99"),
		Tax:      decimal.RequireFromString("6.80"),
		Total:    decimal.RequireFromString("101.79"),
		ShippingAddress: types.ShippingAddress{
			FirstName: "Jo",
			LastName:  "Reyes",
			Address:   "12 Kiln Lane",
			City:      "Asheville",
			State:     "NC",
			ZipCode:   "28801",
			Country:   "US",
		},
	})
}

func TestHandleSendsRenderedEmail(t *testing.T) {
	mailer := &fakeMailer{}
	res := newTestSender(mailer).Handle(context.Background(), sampleRequest("Shipped"))

	require.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.Response.Success)
	assert.Equal(t, msgSent, res.Response.Message)
	assert.Equal(t, "em_1", res.Response.EmailID)

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, []string{"jo@example.com"}, sent.To)
	assert.Equal(t, "Order AM1700000000000-1234 Has Been Shipped", sent.Subject)
	assert.Contains(t, sent.HTML, "#8B6F47")
	assert.Contains(t, sent.HTML, "Expected delivery: February 17, 2026")
	assert.Contains(t, sent.HTML, "Walnut Bowl")
	assert.Contains(t, sent.HTML, "Size: Large")
	assert.Contains(t, sent.HTML, "$42.50")
	assert.Contains(t, sent.HTML, "$101.79")
	assert.Contains(t, sent.HTML, "12 Kiln Lane")
	assert.Contains(t, sent.HTML, "&copy; 2026 Artisan Market")
}

func TestHandleStatusCopy(t *testing.T) {
	cases := map[string]struct {
		subject string
		color   string
	}{
		"processing": {"Order AM1700000000000-1234 is Being Processed", "#4A7C88"},
		"delivered":  {"Order AM1700000000000-1234 Has Been Delivered", "#6B9080"},
		"cancelled":  {"Order AM1700000000000-1234 Has Been Cancelled", "#C1666B"},
	}
	for status, want := range cases {
		t.Run(status, func(t *testing.T) {
			mailer := &fakeMailer{}
			res := newTestSender(mailer).Handle(context.Background(), sampleRequest(status))
			require.Equal(t, http.StatusOK, res.Status)
			require.Len(t, mailer.sent, 1)
			assert.Equal(t, want.subject, mailer.sent[0].Subject)
			assert.Contains(t, mailer.sent[0].HTML, want.color)
		})
	}
}

func TestHandleOmitsZeroShippingAndTax(t *testing.T) {
	req := sampleRequest("processing")
	req.OrderDetails.Shipping = decimal.Zero
	req.OrderDetails.Tax = decimal.Zero
	mailer := &fakeMailer{}

	res := newTestSender(mailer).Handle(context.Background(), req)
	require.Equal(t, http.StatusOK, res.Status)
	assert.NotContains(t, mailer.sent[0].HTML, "Shipping:")
	assert.NotContains(t, mailer.sent[0].HTML, "Tax:")
	assert.Contains(t, mailer.sent[0].HTML, "Subtotal:")
}

func TestHandleEscapesUserContent(t *testing.T) {
	req := sampleRequest("processing")
	req.OrderDetails.Items[0].Name = "<script>alert(1)</script>"
	mailer := &fakeMailer{}

	newTestSender(mailer).Handle(context.Background(), req)
	require.Len(t, mailer.sent, 1)
	assert.NotContains(t, mailer.sent[0].HTML, "<script>")
}

func TestHandleValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*emailfn.Request)
		status int
		msg    string
	}{
		{"missing order id", func(r *emailfn.Request) { r.OrderID = "" }, http.StatusBadRequest, msgMissingFields},
		{"missing details", func(r *emailfn.Request) { r.OrderDetails = nil }, http.StatusBadRequest, msgMissingFields},
		{"bad email", func(r *emailfn.Request) { r.CustomerEmail = "jo@example" }, http.StatusBadRequest, msgInvalidEmail},
		{"confirmed", func(r *emailfn.Request) { r.Status = "confirmed" }, http.StatusBadRequest, msgInvalidStatus},
		{"unknown status", func(r *emailfn.Request) { r.Status = "lost" }, http.StatusBadRequest, msgInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := sampleRequest("shipped")
			tc.mutate(&req)
			mailer := &fakeMailer{}
			res := newTestSender(mailer).Handle(context.Background(), req)
			assert.Equal(t, tc.status, res.Status)
			assert.False(t, res.Response.Success)
			assert.Equal(t, tc.msg, res.Response.Error)
			assert.Empty(t, mailer.sent)
		})
	}
}

func TestHandleWithoutMailer(t *testing.T) {
	res := newTestSender(nil).Handle(context.Background(), sampleRequest("shipped"))
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, msgNotConfigured, res.Response.Error)
}

func TestHandleMailerErrors(t *testing.T) {
	res := newTestSender(&fakeMailer{err: &resend.APIError{StatusCode: 422, Message: "Invalid `to` field"}}).
		Handle(context.Background(), sampleRequest("shipped"))
	assert.Equal(t, 422, res.Status)
	assert.Equal(t, msgSendFailed, res.Response.Error)
	assert.Equal(t, "Invalid `to` field", res.Response.Details)

	res = newTestSender(&fakeMailer{err: errors.New("dial tcp: timeout")}).
		Handle(context.Background(), sampleRequest("shipped"))
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, msgServerError, res.Response.Error)
	assert.Equal(t, "dial tcp: timeout", res.Response.Details)
}

func TestHandleLogsEventKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	s := NewSender(&fakeMailer{}, "Artisan Market <orders@artisanmarket.test>", logg)
	require.Equal(t, http.StatusOK, s.Handle(context.Background(), sampleRequest("shipped")).Status)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "emails.sent", entry["message"])
	assert.Equal(t, "em_1", entry["email_id"])
	assert.Equal(t, "AM1700000000000-1234", entry["order_id"])

	buf.Reset()
	s = NewSender(&fakeMailer{err: &resend.APIError{StatusCode: 422, Message: "Invalid `to` field"}}, "orders@artisanmarket.test", logg)
	require.Equal(t, 422, s.Handle(context.Background(), sampleRequest("shipped")).Status)

	entry = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "emails.send_rejected", entry["message"])
	assert.Equal(t, "Invalid `to` field", entry["reason"])
	assert.Equal(t, float64(422), entry["upstream_status"])
}

func TestInvokeReportsRejectionInResponse(t *testing.T) {
	var invoker emailfn.Invoker = newTestSender(nil)
	resp, err := invoker.Invoke(context.Background(), sampleRequest("shipped"))
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, msgNotConfigured, resp.Error)
}

func TestServeHTTPRoundTripsWithClient(t *testing.T) {
	mailer := &fakeMailer{}
	srv := httptest.NewServer(newTestSender(mailer))
	defer srv.Close()

	client, err := emailfn.NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := client.Invoke(context.Background(), sampleRequest("delivered"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "em_1", resp.EmailID)

	resp, err = client.Invoke(context.Background(), sampleRequest("confirmed"))
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, msgInvalidStatus, resp.Error)
}

func TestServeHTTPRejectsOtherMethods(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestSender(&fakeMailer{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", strings.NewReader("")))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	var body emailfn.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, msgMethodNotAllowed, body.Error)
}
