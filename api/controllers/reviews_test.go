package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/storefront/internal/reviews"
	"github.com/artisanmarket/storefront/pkg/config"
	"github.com/artisanmarket/storefront/pkg/db/models"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
)

type stubReviews struct {
	reviews.Service

	created reviews.CreateInput
	email   string
	helpful int64
}

func (s *stubReviews) CanReview(_ context.Context, productID int64, email string) (*reviews.Eligibility, error) {
	s.email = email
	return &reviews.Eligibility{CanReview: true, VerifiedPurchase: true, OrderID: "AM2026-1000"}, nil
}

func (s *stubReviews) Create(_ context.Context, input reviews.CreateInput) (*models.Review, error) {
	s.created = input
	if input.Rating == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid review")
	}
	return &models.Review{ID: 1, ProductID: input.ProductID, Rating: input.Rating, VerifiedPurchase: true}, nil
}

func (s *stubReviews) MarkHelpful(_ context.Context, id int64) (*models.Review, error) {
	s.helpful = id
	return &models.Review{ID: id, HelpfulCount: 1}, nil
}

func TestReviewEligibilityForwardsEmail(t *testing.T) {
	stub := &stubReviews{}
	req := withURLParams(newRequest(http.MethodGet, "/api/v1/products/3/reviews/eligibility?email=%20jo@example.com", nil), map[string]string{"productId": "3"})
	resp := httptest.NewRecorder()
	ReviewEligibility(stub, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "jo@example.com", stub.email)
	var result reviews.Eligibility
	decodeData(t, resp, &result)
	assert.True(t, result.VerifiedPurchase)
	assert.Equal(t, "AM2026-1000", result.OrderID)
}

func TestReviewCreate(t *testing.T) {
	stub := &stubReviews{}
	body := `{"productId":3,"rating":5,"title":"Lovely","comment":"Beautifully made bowl","customerName":"Jo","customerEmail":"jo@example.com"}`
	resp := httptest.NewRecorder()
	ReviewCreate(stub, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, int64(3), stub.created.ProductID)
	assert.Equal(t, "jo@example.com", stub.created.CustomerEmail)

	resp = httptest.NewRecorder()
	ReviewCreate(stub, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(`{"productId":3}`)))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestReviewUpdateRequiresAField(t *testing.T) {
	req := withURLParams(newRequest(http.MethodPatch, "/api/v1/reviews/1", strings.NewReader(`{}`)), map[string]string{"reviewId": "1"})
	resp := httptest.NewRecorder()
	ReviewUpdate(&stubReviews{}, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestReviewHelpful(t *testing.T) {
	stub := &stubReviews{}
	req := withURLParams(newRequest(http.MethodPost, "/api/v1/reviews/8/helpful", nil), map[string]string{"reviewId": "8"})
	resp := httptest.NewRecorder()
	ReviewHelpful(stub, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(8), stub.helpful)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{
		"redis": pingerFunc(func(context.Context) error { return nil }),
		"db":    nil,
	}).ServeHTTP(resp, newRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get("X-Artisan-Env"))

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{
		"redis": pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	}).ServeHTTP(resp, newRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
