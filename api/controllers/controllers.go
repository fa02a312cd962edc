package controllers

import (
	"net/http"

	"github.com/artisanmarket/storefront/api/middleware"
	"github.com/artisanmarket/storefront/api/responses"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/logger"
)

// sessionID returns the request's session id, writing a 401 when the session
// middleware did not run.
func sessionID(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	id := middleware.SessionIDFromContext(r.Context())
	if id == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
		return "", false
	}
	return id, true
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
