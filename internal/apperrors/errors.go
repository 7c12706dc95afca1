package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflicting resource state")

// ErrImmutable indicates an attempt to mutate an entry that is no longer mutable (POSTED/REVERSED).
var ErrImmutable = errors.New("entry is immutable")

// ErrNoLines indicates an operation on a journal entry that has no lines.
var ErrNoLines = errors.New("journal entry has no lines")

// ErrNotConfigured indicates a capability that has no backing data wired up,
// as opposed to backing data that is merely empty.
var ErrNotConfigured = errors.New("capability not configured")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrTransient indicates a store-level failure (connection, timeout) where
// retrying the whole unit of work is safe. Validation and state errors are
// never marked transient.
var ErrTransient = errors.New("transient store failure")

// AppError wraps a lower-level error with an HTTP-ish status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// UnbalancedError reports a journal entry whose debits and credits do not
// match within the accounting tolerance. Delta is debits minus credits so the
// operator can see which side is heavy.
type UnbalancedError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("entry is unbalanced: debits %s, credits %s, delta %s",
		e.Debits.String(), e.Credits.String(), e.Delta().String())
}

// Delta returns debits minus credits.
func (e *UnbalancedError) Delta() decimal.Decimal {
	return e.Debits.Sub(e.Credits)
}

func (e *UnbalancedError) Unwrap() error {
	return ErrValidation
}
