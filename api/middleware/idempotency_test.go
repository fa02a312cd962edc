package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/redis/redistest"
)

const ordersRoute = "/api/v1/checkout/orders"

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestIdempotencyCoveredRoutes(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    bool
	}{
		{"place order", http.MethodPost, ordersRoute, true},
		{"post review", http.MethodPost, "/api/v1/reviews", true},
		{"email function", http.MethodPost, "/api/v1/functions/send-order-status-email", true},
		{"admin status", http.MethodPatch, "/api/admin/v1/orders/{orderId}/status", true},
		{"advance step", http.MethodPost, "/api/v1/checkout/advance", false},
		{"read order", http.MethodGet, "/api/v1/orders/{orderId}", false},
	}

	for _, tt := range tests {
		if got := covered(tt.method, tt.pattern); got != tt.want {
			t.Fatalf("%s: expected covered=%v got %v", tt.name, tt.want, got)
		}
	}
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	calls := 0
	handler := Idempotency(redistest.New(), time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, requestWithPattern(http.MethodPost, ordersRoute, ordersRoute, strings.NewReader(`{}`)))
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", resp.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("handler executed %d times, expected 2", calls)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := redistest.New()
	mw := Idempotency(store, time.Hour, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"orderId":"AM1-1000"}}`))
	})

	req := requestWithPattern(http.MethodPost, ordersRoute, ordersRoute, strings.NewReader(`{}`))
	req.Header.Set(idempotencyHeader, "abc")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", resp.Code)
	}

	replay := requestWithPattern(http.MethodPost, ordersRoute, ordersRoute, strings.NewReader(`{}`))
	replay.Header.Set(idempotencyHeader, "abc")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, replay)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if rec.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"data":{"orderId":"AM1-1000"}}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
	for key, ttl := range store.TTLs {
		if ttl != time.Hour {
			t.Fatalf("expected ttl 1h for %s, got %v", key, ttl)
		}
	}
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	store := redistest.New()
	mw := Idempotency(store, time.Hour, nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, ordersRoute, ordersRoute, strings.NewReader(`{}`))
		req.Header.Set(idempotencyHeader, "retry-me")
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected retry to reach handler, calls=%d", calls)
	}
	if len(store.Data) != 1 {
		t.Fatalf("expected only the success to be stored, got %d records", len(store.Data))
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	mw := Idempotency(redistest.New(), time.Hour, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/reviews", "/api/v1/reviews", strings.NewReader(`{"rating":5}`))
	req.Header.Set(idempotencyHeader, "xyz")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	replay := requestWithPattern(http.MethodPost, "/api/v1/reviews", "/api/v1/reviews", strings.NewReader(`{"rating":1}`))
	replay.Header.Set(idempotencyHeader, "xyz")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}
