// Package apperr defines the user-facing error taxonomy. Errors of these
// kinds are expected outcomes surfaced verbatim to clients; anything else is
// an internal failure and must not leak details.
package apperr

import "errors"

type Kind int

const (
	KindValidation      Kind = iota + 1 // malformed or empty client input
	KindUnauthenticated                 // missing, invalid or expired token
	KindAuth                            // wrong credentials
	KindForbidden                       // authenticated but not the owner
	KindNotFound                        // referenced entity does not exist
	KindConflict                        // uniqueness violation
)

type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages, keyed by input field name.
	Fields map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func ValidationFields(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// From extracts the *Error wrapped in err, or nil if err is not one.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
