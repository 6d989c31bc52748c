package apperr

import (
	"errors"
	"net/http"
)

// Status maps a domain error to its HTTP status code and client-facing
// message. Unknown errors map to a generic 500 so internal details never
// leak to the client.
func Status(err error) (int, string) {
	var (
		validation *ValidationError
		capacity   *TenantAtCapacityError
		notEmpty   *CategoryNotEmptyError
	)

	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, ErrNoTenantAssigned):
		return http.StatusForbidden, "no tenant assigned"
	case errors.Is(err, ErrProfileMissing):
		return http.StatusForbidden, "no profile for this identity"
	case errors.Is(err, ErrSelfPrivilegeEscalation):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, ErrTenantNotFound):
		return http.StatusNotFound, "tenant not found"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, validation.Error()
	case errors.As(err, &capacity):
		return http.StatusConflict, capacity.Error()
	case errors.As(err, &notEmpty):
		return http.StatusConflict, notEmpty.Error()
	}

	return http.StatusInternalServerError, "internal server error"
}
