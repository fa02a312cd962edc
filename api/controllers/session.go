package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/artisanmarket/storefront/api/middleware"
	"github.com/artisanmarket/storefront/api/responses"
	"github.com/artisanmarket/storefront/api/validators"
	"github.com/artisanmarket/storefront/pkg/auth"
	"github.com/artisanmarket/storefront/pkg/config"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/logger"
)

type sessionRequest struct {
	AccountEmail *string `json:"accountEmail"`
}

type sessionResponse struct {
	Token        string    `json:"token"`
	SessionID    string    `json:"sessionId"`
	AccountEmail string    `json:"accountEmail,omitempty"`
	Guest        bool      `json:"guest"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// SessionCreate mints a storefront session token. A bearer token on the
// request, even an expired one, is renewed under the same session id so the
// shopper keeps their cart. An accountEmail in the body signs the session in;
// an empty one turns it back into a guest session.
func SessionCreate(cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload auth.SessionPayload
		if raw := middleware.BearerToken(r); raw != "" {
			existing, err := auth.ParseSessionTokenAllowExpired(cfg, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			payload.SessionID = existing.SessionID
			payload.AccountEmail = existing.AccountEmail
		}

		if r.ContentLength != 0 {
			var req sessionRequest
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if req.AccountEmail != nil {
				email := strings.TrimSpace(*req.AccountEmail)
				if email != "" {
					if err := validators.Field("accountEmail", email, "email"); err != nil {
						responses.WriteError(r.Context(), logg, w, err)
						return
					}
				}
				payload.AccountEmail = email
			}
		}

		token, claims, err := auth.MintSessionToken(cfg, time.Now(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session"))
			return
		}

		if logg != nil {
			ctx := logg.WithSessionID(r.Context(), claims.SessionID)
			logg.Info(logg.WithField(ctx, "renewed", payload.SessionID != ""), "session.issued")
		}

		responses.WriteSuccessStatus(r.Context(), w, http.StatusCreated, sessionResponse{
			Token:        token,
			SessionID:    claims.SessionID,
			AccountEmail: claims.AccountEmail,
			Guest:        claims.IsGuest(),
			ExpiresAt:    claims.ExpiresAt.Time,
		})
	}
}
