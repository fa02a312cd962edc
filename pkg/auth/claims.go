package auth

import "github.com/golang-jwt/jwt/v5"

// SessionPayload captures the data available when minting a storefront session.
type SessionPayload struct {
	// SessionID keys the cart and checkout draft. Empty mints a new one.
	SessionID string
	// AccountEmail is set when the shopper is signed in; guests leave it empty.
	AccountEmail string
}

// SessionClaims represents the typed JWT issued to storefront clients.
type SessionClaims struct {
	SessionID    string `json:"sid"`
	AccountEmail string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IsGuest reports whether the session has no signed-in account.
func (c SessionClaims) IsGuest() bool {
	return c.AccountEmail == ""
}
