package pricing

import (
	"fmt"

	"github.com/erp/pricing/internal/domain/shared"
)

// ValidationError reports malformed pricing input. It is raised before any
// computation runs, so callers never see partial results.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, shared.ErrInvalidInput) match
func (e *ValidationError) Unwrap() error {
	return shared.ErrInvalidInput
}

// NewValidationError reports a problem with one input field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
