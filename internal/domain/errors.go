package domain

import (
	"errors"
	"fmt"
)

// Validation failure kinds. Every rejection of the reservation pipeline
// unwraps to exactly one of them.
var (
	ErrDuplicateIdempotencyKey     = errors.New("duplicate reservation")
	ErrMissingRequiredEndTime      = errors.New("end time is required for flexible duration")
	ErrCapacityExceeded            = errors.New("capacity exceeded")
	ErrInvalidCreateStatus         = errors.New("invalid status on create")
	ErrInvalidTransition           = errors.New("invalid status transition")
	ErrCancellationNoticeViolation = errors.New("cancellation notice period violated")
	ErrUnknownStatus               = errors.New("unknown status")
)

// Misconfiguration of the status machine
var ErrInvalidStatusMachine = errors.New("invalid status machine config")

// Field paths reported with validation failures
const (
	PathIdempotencyKey = "idempotencyKey"
	PathEndTime        = "endTime"
	PathStartTime      = "startTime"
	PathStatus         = "status"
)

// ValidationError is a structured rejection with a field path and message
type ValidationError struct {
	Kind    error
	Path    string
	Message string
}

func NewValidationError(kind error, path, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// AsValidationError extracts a *ValidationError from err's chain
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
