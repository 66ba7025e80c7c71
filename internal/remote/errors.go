package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNetwork    = errors.New("network error")
	ErrDecode     = errors.New("decode error")
	ErrNotFound   = errors.New("not found")
	ErrServer     = errors.New("server error")
	ErrValidation = errors.New("validation error")
	ErrClient     = errors.New("request rejected")
)

// Error describes a failed gateway operation.
type Error struct {
	Kind    error  // One of the Err* kinds above
	Op      string // Operation name, e.g. "list emails"
	Status  int    // HTTP status, 0 if no response was received
	Message string // Server-provided or validation detail
	Err     error  // Underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsRetryable reports whether err is a transport failure worth retrying.
// Server, decode and validation errors are never retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// ValidationError builds an ErrValidation error for malformed mutation input.
func ValidationError(op, message string) error {
	return &Error{Kind: ErrValidation, Op: op, Message: message}
}

// kindForStatus maps an HTTP status to an error kind.
func kindForStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status >= 500:
		return ErrServer
	default:
		return ErrClient
	}
}
