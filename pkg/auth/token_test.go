package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/artisanmarket/storefront/pkg/config"
	"github.com/google/uuid"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret: "secret",
		Issuer: "artisan-market",
		TTL:    30 * time.Minute,
	}
}

func TestMintAndParseSessionToken(t *testing.T) {
	cfg := testSessionConfig()
	now := time.Now().UTC()
	sessionID := uuid.NewString()

	token, minted, err := MintSessionToken(cfg, now, SessionPayload{
		SessionID:    sessionID,
		AccountEmail: "jo@example.com",
	})
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	claims, err := ParseSessionToken(cfg, token)
	if err != nil {
		t.Fatalf("parse session token: %v", err)
	}

	if claims.SessionID != sessionID || minted.SessionID != sessionID {
		t.Fatalf("expected sid %s, got %s", sessionID, claims.SessionID)
	}
	if claims.AccountEmail != "jo@example.com" || claims.IsGuest() {
		t.Fatalf("account email not preserved: %q", claims.AccountEmail)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(cfg.TTL)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintSessionTokenGeneratesGuestSession(t *testing.T) {
	token, minted, err := MintSessionToken(testSessionConfig(), time.Now(), SessionPayload{})
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}
	if _, err := uuid.Parse(minted.SessionID); err != nil {
		t.Fatalf("expected generated uuid session id, got %q", minted.SessionID)
	}
	claims, err := ParseSessionToken(testSessionConfig(), token)
	if err != nil {
		t.Fatalf("parse session token: %v", err)
	}
	if !claims.IsGuest() {
		t.Fatal("expected guest session")
	}
}

func TestParseSessionTokenInvalidSignature(t *testing.T) {
	cfg := testSessionConfig()
	token, _, err := MintSessionToken(cfg, time.Now(), SessionPayload{})
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	if _, err := ParseSessionToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}

	other := cfg
	other.Secret = "other"
	if _, err := ParseSessionToken(other, token); err == nil {
		t.Fatal("expected wrong secret error")
	}
}

func TestParseSessionTokenExpired(t *testing.T) {
	cfg := testSessionConfig()
	sessionID := uuid.NewString()
	token, _, err := MintSessionToken(cfg, time.Now().Add(-time.Hour), SessionPayload{SessionID: sessionID})
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	_, err = ParseSessionToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseSessionTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("parse expired session token: %v", err)
	}
	if claims.SessionID != sessionID {
		t.Fatalf("expected sid %s, got %s", sessionID, claims.SessionID)
	}
}

func TestMintSessionTokenRejectsBadInput(t *testing.T) {
	cases := map[string]struct {
		cfg     config.SessionConfig
		payload SessionPayload
	}{
		"missing secret": {config.SessionConfig{Issuer: "x", TTL: time.Minute}, SessionPayload{}},
		"zero ttl":       {config.SessionConfig{Secret: "s", Issuer: "x"}, SessionPayload{}},
		"bad email":      {testSessionConfig(), SessionPayload{AccountEmail: "not-an-email"}},
		"bad session id": {testSessionConfig(), SessionPayload{SessionID: "cart-1"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := MintSessionToken(tc.cfg, time.Now(), tc.payload); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
