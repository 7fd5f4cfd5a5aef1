package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ledgerline/identity-core/internal/pkg/apperror"
	"github.com/ledgerline/identity-core/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Messages of unexpected
// errors are logged, never returned.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, "Validation failed", validationErrs.ToMap())
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		Timeout(w, "Request timed out")
		return
	}

	if errors.Is(err, context.Canceled) {
		slog.Warn("Request canceled", "error", err)
		Canceled(w, "Request canceled")
		return
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	switch appErr.Kind {
	case apperror.KindValidation:
		ValidationError(w, appErr.Message, nil)
	case apperror.KindConflict:
		Conflict(w, appErr.Message)
	case apperror.KindUnauthorized, apperror.KindUnauthenticated:
		Unauthorized(w, appErr.Message)
	case apperror.KindForbidden:
		Forbidden(w, appErr.Message)
	case apperror.KindNotFound:
		NotFound(w, appErr.Message)
	default:
		InternalServerError(w, appErr.Message)
	}
}
