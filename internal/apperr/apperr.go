// Package apperr defines the error kinds surfaced by the API and their
// mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindConflict
	KindAuthFailed
	KindUnauthorized
	KindNotFound
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindConflict:
		return "conflict"
	case KindAuthFailed:
		return "auth_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthFailed, KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error with a kind and a message that is safe to show to clients.
type Error struct {
	Kind    Kind
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

// Is matches another *Error by kind and message, so the package-level
// values below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches a cause to a client-facing error. The cause is never sent
// to the client.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Internal server error."
}

var (
	ErrInvalidInput      = New(KindInvalidInput, "Invalid input.")
	ErrInvalidStatus     = New(KindInvalidInput, "Invalid status.")
	ErrUserExists        = New(KindConflict, "User already exists.")
	ErrUsernameTaken     = New(KindConflict, "Username already in use.")
	ErrAuthFailed        = New(KindAuthFailed, "Authentication failed.")
	ErrUnauthorized      = New(KindUnauthorized, "Unauthorized")
	ErrNotFound          = New(KindNotFound, "Not found.")
	ErrChecklistNotFound = New(KindNotFound, "Checklist not found.")
	ErrItemNotFound      = New(KindNotFound, "Item not found.")
	ErrReportNotFound    = New(KindNotFound, "No reports found.")
	ErrScanNotFound      = New(KindNotFound, "Scan not found.")
	ErrScanInProgress    = New(KindRateLimited, "Scan already in progress.")
	ErrScanQueueFull     = New(KindRateLimited, "Scan queue is full.")
)
