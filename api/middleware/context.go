package middleware

import (
	"context"

	"github.com/artisanmarket/storefront/pkg/auth"
)

type contextKey string

const ctxSession contextKey = "session"

// WithSession injects verified session claims into the context.
func WithSession(ctx context.Context, claims *auth.SessionClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, claims)
}

// SessionFromContext returns the verified session claims, or nil.
func SessionFromContext(ctx context.Context) *auth.SessionClaims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(ctxSession).(*auth.SessionClaims)
	return claims
}

// SessionIDFromContext returns the session id keying the cart and checkout draft.
func SessionIDFromContext(ctx context.Context) string {
	if claims := SessionFromContext(ctx); claims != nil {
		return claims.SessionID
	}
	return ""
}

// AccountEmailFromContext returns the signed-in account email, empty for guests.
func AccountEmailFromContext(ctx context.Context) string {
	if claims := SessionFromContext(ctx); claims != nil {
		return claims.AccountEmail
	}
	return ""
}
