package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/storefront/pkg/redis/redistest"
)

func TestRateLimitAllowsUnderLimitAndKeepsBody(t *testing.T) {
	policy := NewRateLimitPolicy("reviews", time.Minute, 2, 2, "customerEmail")
	handler := RateLimit(policy, redistest.New(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"customerEmail":"jo@example.com"`)
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(`{"customerEmail":"jo@example.com"}`))
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRateLimitEmailCounterIsCaseInsensitive(t *testing.T) {
	policy := NewRateLimitPolicy("reviews", time.Minute, 0, 2, "customerEmail")
	handler := RateLimit(policy, redistest.New(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	emails := []string{"jo@example.com", "JO@example.com", " jo@Example.com "}
	for i, email := range emails {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(`{"customerEmail":"`+email+`"}`))
		req.RemoteAddr = "10.0.0.1:1"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if i < 2 {
			assert.Equal(t, http.StatusCreated, rec.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
}

func TestRateLimitIPCounterUsesForwardedFor(t *testing.T) {
	store := redistest.New()
	policy := NewRateLimitPolicy("session", time.Minute, 1, 0, "")
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "request %d", i)
	}
	assert.Equal(t, time.Minute, store.TTLs["rl:session:ip:203.0.113.9"])
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RateLimit(NewRateLimitPolicy("off", 0, 5, 5, "email"), redistest.New(), nil)(next)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
