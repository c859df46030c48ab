// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindConflict
	KindNotFound
	KindDelivery
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindDelivery:
		return "delivery"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Status maps an error kind to the HTTP status code returned to clients.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a user-safe Code and Message alongside the underlying cause.
// Err is for server-side logs only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and code so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *Error {
	return newError(KindValidation, code, message)
}

func NotFound(code, message string) *Error {
	return newError(KindNotFound, code, message)
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal_error", Message: "Internal server error", Err: err}
}

// Wrap attaches a cause to a copy of e.
func (e *Error) Wrap(err error) *Error {
	out := *e
	out.Err = err
	return &out
}

var (
	ErrAuthRequired       = newError(KindAuthentication, "authentication_required", "Authentication required")
	ErrInvalidCredentials = newError(KindAuthentication, "invalid_credentials", "Invalid credentials")
	ErrInvalidToken       = newError(KindAuthentication, "invalid_token", "Invalid or expired session")
	ErrEmailTaken         = newError(KindConflict, "email_taken", "The email provided is already registered")
	ErrInvalidResetToken  = newError(KindNotFound, "invalid_reset_token", "Invalid or expired token")
	ErrUserNotFound       = newError(KindNotFound, "user_not_found", "User not found")
	ErrTaskNotFound       = newError(KindNotFound, "task_not_found", "Task not found")
	ErrDeliveryFailed     = newError(KindDelivery, "delivery_failed", "Could not send email, please try again later")
	ErrStorageDisabled    = newError(KindUnavailable, "storage_unavailable", "File storage is not configured")
)

// KindOf reports the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
