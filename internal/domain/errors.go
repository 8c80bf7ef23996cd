package domain

import (
	"errors"
	"fmt"

	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
)

var (
	ErrParse        = calendar.ErrParse
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrPrecondition = errors.New("lifecycle precondition failed")
	ErrPersistence  = errors.New("persistence failure")
	ErrNotFound     = errors.New("not found")
)

// ParseError reports malformed date or number input.
type ParseError = calendar.ParseError

// ValidationError is a domain rule violated by the input, caught before any write.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError is returned when a date range clashes with another reservation of
// the same vehicle, or when the store rejects a write racing another session.
type ConflictError struct {
	Reason      string
	Conflicting *Reservation
}

func (e *ConflictError) Error() string {
	if e.Conflicting == nil {
		return fmt.Sprintf("conflict: %s", e.Reason)
	}
	return fmt.Sprintf("conflict: %s (reservation %s for customer %s, %s to %s)",
		e.Reason, e.Conflicting.ID, e.Conflicting.CustomerID, e.Conflicting.StartDate, e.Conflicting.EndDate)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// PreconditionError is a lifecycle invariant violation (duplicate checkout,
// checkin without checkout, ...). It also matches ErrConflict.
type PreconditionError struct {
	Op     string
	State  string
	Reason string
}

func NewPreconditionError(op, state, reason string) *PreconditionError {
	return &PreconditionError{Op: op, State: state, Reason: reason}
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s not allowed while %s: %s", e.Op, e.State, e.Reason)
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition || target == ErrConflict
}

// PersistenceError wraps a failure of the external store.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err unless it already carries a domain meaning.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsDomainError reports whether err matches one of the kinds declared here.
func IsDomainError(err error) bool {
	for _, kind := range []error{ErrParse, ErrValidation, ErrConflict, ErrPrecondition, ErrPersistence, ErrNotFound} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}
