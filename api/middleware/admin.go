package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/artisanmarket/storefront/api/responses"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/logger"
)

const adminKeyHeader = "X-API-Key"

// AdminAPIKey guards catalog and order administration. An unset key disables
// the admin surface entirely.
func AdminAPIKey(key string, logg *logger.Logger) func(http.Handler) http.Handler {
	expected := []byte(strings.TrimSpace(key))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin api disabled"))
				return
			}
			provided := strings.TrimSpace(r.Header.Get(adminKeyHeader))
			if provided == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing api key"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invalid api key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
