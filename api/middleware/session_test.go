package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/storefront/pkg/auth"
	"github.com/artisanmarket/storefront/pkg/config"
	"github.com/artisanmarket/storefront/pkg/logger"
)

var testSession = config.SessionConfig{Secret: "secret", Issuer: "artisan-market", TTL: time.Hour}

func TestSessionSeedsContext(t *testing.T) {
	token, minted, err := auth.MintSessionToken(testSession, time.Now(), auth.SessionPayload{AccountEmail: "jo@example.com"})
	require.NoError(t, err)

	var gotID, gotEmail string
	handler := Session(testSession, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = SessionIDFromContext(r.Context())
		gotEmail = AccountEmailFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, minted.SessionID, gotID)
	assert.Equal(t, "jo@example.com", gotEmail)
}

func TestSessionRejectsMissingAndInvalidTokens(t *testing.T) {
	handler := Session(testSession, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	for _, header := range []string{"", "Bearer", "Bearer not-a-jwt", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestAdminAPIKey(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name       string
		configured string
		provided   string
		want       int
	}{
		{"valid", "k-123", "k-123", http.StatusOK},
		{"missing", "k-123", "", http.StatusUnauthorized},
		{"wrong", "k-123", "nope", http.StatusForbidden},
		{"disabled", "", "anything", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", nil)
			if tc.provided != "" {
				req.Header.Set(adminKeyHeader, tc.provided)
			}
			rec := httptest.NewRecorder()
			AdminAPIKey(tc.configured, nil)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
