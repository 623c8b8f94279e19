package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrInvalidBody),
		errors.Is(err, service.ErrInvalidTaskID):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the client-facing message for err. Unknown
// errors get a generic message so internal details never leak.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "Server error"
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"
	case errors.Is(err, shared.ErrInvalidBody):
		return "Invalid request body"
	case errors.Is(err, service.ErrInvalidTaskID):
		return "Invalid task ID"
	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Unauthorized"
	default:
		return "Server error"
	}
}

// HandleAPIError writes the response for err. Validation failures list
// their field violations; everything else gets the safe message, with the
// redacted detail logged.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var violations domain.ValidationErrors
	if errors.As(err, &violations) {
		shared.RespondWithValidationErrors(w, r, violations)
		return
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
