package auth

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/artisanmarket/storefront/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintSessionToken issues a signed JWT for the provided payload using the configured TTL.
func MintSessionToken(cfg config.SessionConfig, now time.Time, payload SessionPayload) (string, *SessionClaims, error) {
	if cfg.Secret == "" {
		return "", nil, fmt.Errorf("session secret is required")
	}
	if cfg.Issuer == "" {
		return "", nil, fmt.Errorf("session issuer is required")
	}
	if cfg.TTL <= 0 {
		return "", nil, fmt.Errorf("session ttl must be positive")
	}

	email := strings.TrimSpace(payload.AccountEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return "", nil, fmt.Errorf("invalid account email %q", email)
		}
	}

	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, err := uuid.Parse(sessionID); err != nil {
		return "", nil, fmt.Errorf("invalid session id %q", sessionID)
	}

	claims := &SessionClaims{
		SessionID:    sessionID,
		AccountEmail: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("signing jwt: %w", err)
	}
	return signed, claims, nil
}

// ParseSessionToken validates the JWT string and returns typed claims.
func ParseSessionToken(cfg config.SessionConfig, tokenString string) (*SessionClaims, error) {
	return parse(cfg, tokenString, jwt.WithIssuer(cfg.Issuer))
}

// ParseSessionTokenAllowExpired skips exp/nbf so an expired session can be
// renewed without losing its cart.
func ParseSessionTokenAllowExpired(cfg config.SessionConfig, tokenString string) (*SessionClaims, error) {
	return parse(cfg, tokenString, jwt.WithIssuer(cfg.Issuer), jwt.WithoutClaimsValidation())
}

func parse(cfg config.SessionConfig, tokenString string, opts ...jwt.ParserOption) (*SessionClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	claims := &SessionClaims{}
	opts = append(opts, jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}))
	_, err := jwt.NewParser(opts...).ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
	)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("session id claim is required")
	}
	return claims, nil
}
