// Package apperr defines the error kinds surfaced by the service layer so
// handlers can map them to HTTP status codes without string matching.
package apperr

import "errors"

// Kind classifies a service-layer failure
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindForbidden
)

// Error carries a kind and a user-facing message
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation reports malformed input
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound reports a missing entity
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict reports a state-machine precondition violation
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Forbidden reports an authorization failure
func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

func isKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsValidation reports whether err is a Validation error
func IsValidation(err error) bool {
	return isKind(err, KindValidation)
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool {
	return isKind(err, KindNotFound)
}

// IsConflict reports whether err is a Conflict error
func IsConflict(err error) bool {
	return isKind(err, KindConflict)
}

// IsForbidden reports whether err is a Forbidden error
func IsForbidden(err error) bool {
	return isKind(err, KindForbidden)
}
