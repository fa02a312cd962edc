package middleware

import (
	"net/http"

	"github.com/artisanmarket/storefront/internal/notices"
)

// Notices gives every request a collector so services can raise shopper
// notices that the response envelope returns.
func Notices() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, _ := notices.NewContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
