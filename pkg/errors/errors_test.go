package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
		expose    bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true, expose: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", expose: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", expose: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true, expose: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true, expose: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			meta := MetadataFor(tt.code)
			assert.Equal(t, tt.status, meta.HTTPStatus)
			assert.Equal(t, tt.publicMsg, meta.PublicMessage)
			assert.Equal(t, tt.retryable, meta.Retryable)
			assert.Equal(t, tt.detailsOK, meta.DetailsAllowed)
			assert.Equal(t, tt.expose, meta.ExposeMessage)
		})
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "Please enter your email address")
	assert.Equal(t, CodeValidation, base.Code())
	assert.Equal(t, "Please enter your email address", base.Message())
	assert.Nil(t, base.Details())

	base.WithDetails([]FieldError{{Field: "guestEmail", Message: "required"}})
	assert.NotNil(t, base.Details())

	cause := stdErrors.New("records unavailable")
	wrapped := Wrap(CodeDependency, cause, "fetch products")
	assert.True(t, stdErrors.Is(wrapped, cause))
	assert.Equal(t, CodeDependency, wrapped.Code())
	assert.Contains(t, wrapped.Error(), "records unavailable")

	formatted := Newf(CodeNotFound, "order %s not found", "AM2026-1234")
	assert.Equal(t, "order AM2026-1234 not found", formatted.Message())
}

func TestAsAndIsCodeFollowWrappedChains(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeConflict, "submission in progress"))

	got := As(err)
	require.NotNil(t, got)
	assert.Equal(t, CodeConflict, got.Code())
	assert.True(t, IsCode(err, CodeConflict))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.Nil(t, As(nil))
	assert.False(t, IsCode(stdErrors.New("plain"), CodeInternal))
}

func TestValidationAggregatesFieldErrors(t *testing.T) {
	assert.NoError(t, Validation(nil))

	var agg error
	agg = multierr.Append(agg, FieldError{Field: "rating", Message: "Rating must be between 1 and 5"})
	agg = multierr.Append(agg, FieldError{Field: "title", Message: "Review title must be at least 3 characters"})

	err := Validation(agg)
	typed := As(err)
	require.NotNil(t, typed)
	assert.Equal(t, CodeValidation, typed.Code())
	assert.Equal(t, "Rating must be between 1 and 5", typed.Message())
	assert.Equal(t, []FieldError{
		{Field: "rating", Message: "Rating must be between 1 and 5"},
		{Field: "title", Message: "Review title must be at least 3 characters"},
	}, typed.Details())
}
