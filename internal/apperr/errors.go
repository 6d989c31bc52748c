package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the policy, capacity and handler layers.
// Handlers translate these into HTTP status codes with Status.
var (
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrNoTenantAssigned        = errors.New("no tenant assigned")
	ErrProfileMissing          = errors.New("profile missing for identity")
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("forbidden")
	ErrSelfPrivilegeEscalation = errors.New("cannot change own role or status")
	ErrTenantNotFound          = errors.New("tenant not found")
)

// ValidationError reports a schema or check-constraint violation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Validation builds a ValidationError with the given reason.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// TenantAtCapacityError reports a rejected admission with the counts the
// caller needs for display.
type TenantAtCapacityError struct {
	CurrentCount int64
	MaxUsers     int
}

func (e *TenantAtCapacityError) Error() string {
	return fmt.Sprintf("tenant at capacity (%d/%d users)", e.CurrentCount, e.MaxUsers)
}

// CategoryNotEmptyError reports a refused category deletion and how many
// products still reference it.
type CategoryNotEmptyError struct {
	ProductCount int64
}

func (e *CategoryNotEmptyError) Error() string {
	return fmt.Sprintf("category still referenced by %d products", e.ProductCount)
}
