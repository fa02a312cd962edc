package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/artisanmarket/storefront/internal/notices"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/types"
)

// WriteSuccess answers 200 with data and the notices raised while handling
// the request.
func WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) {
	WriteSuccessStatus(ctx, w, http.StatusOK, data)
}

func WriteSuccessStatus(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{
		Data:    data,
		Notices: collected(ctx),
	})
}

// WriteError maps err onto its code's HTTP status and public message. Errors
// without a code are reported as internal.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if meta.ExposeMessage {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
		Notices: collected(ctx),
	}

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		fields := pkgerrors.Dump(err).Fields()
		fields["status"] = meta.HTTPStatus
		if dm, ok := typed.Details().(map[string]string); ok {
			if step, ok := dm["currentStep"]; ok {
				fields["checkout_step"] = step
			}
		}

		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func collected(ctx context.Context) []types.Notice {
	if c := notices.FromContext(ctx); c != nil {
		return c.Items()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
