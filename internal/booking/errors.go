package booking

import (
	"errors"
	"fmt"

	"github.com/DeveloperForam/test-house-design/internal/ledger"
	"github.com/DeveloperForam/test-house-design/internal/models"
)

var (
	ErrInvalidMobile    = errors.New("mobile number must be exactly 10 digits")
	ErrInvalidAdvance   = errors.New("advance payment must be greater than zero and not exceed the total")
	ErrHouseUnavailable = models.ErrHouseUnavailable

	ErrExceedsPending    = ledger.ErrExceedsPending
	ErrNonPositiveAmount = ledger.ErrNonPositiveAmount
	ErrSoldAlready       = ledger.ErrSoldAlready
)

// ValidationError blocks an operation before anything is sent to the backend.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// FetchError is a failed read from the backend.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError is a failed write. Message carries the backend's explanation when it gave one.
type MutationError struct {
	Op      string
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("failed to %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err was raised before any backend call.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
