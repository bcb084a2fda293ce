package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for callers that need to branch on it
// (HTTP status mapping, retry decisions).
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindConflict          ErrorKind = "CONFLICT"
	KindPersistence       ErrorKind = "PERSISTENCE_ERROR"
)

// Error is the structured failure returned by every service operation.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by kind, so errors.Is(err, ErrNotFound) holds
// for any not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrPersistence       = &Error{Kind: KindPersistence}
)

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity of the given type.
func NotFound(entity string, id int64) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Conflict wraps a store-level concurrency failure. Callers may retry.
func Conflict(op string, err error) error {
	return &Error{Kind: KindConflict, Message: op + ": concurrent modification, retry", Err: err}
}

// Persistence wraps an unexpected store failure.
func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Message: op, Err: err}
}

// InsufficientStockError is returned when a requested quantity exceeds what
// is available for an item. Available already includes any quantity restored
// by an edit of the same issuance.
type InsufficientStockError struct {
	ItemID    int64
	ItemName  string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested: %d, available: %d)", e.ItemName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// KindOf returns the kind of err, or "" for errors that did not originate
// from this package.
func KindOf(err error) ErrorKind {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return KindInsufficientStock
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether the operation may succeed if attempted again.
func IsRetryable(err error) bool {
	return KindOf(err) == KindConflict
}
