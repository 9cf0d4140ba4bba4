package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// ErrValidation means bad input that never reaches a transport.
	ErrValidation = errors.New("invalid input")

	// ErrAuth means the remote service rejected the credentials or token.
	ErrAuth = errors.New("authentication failed")

	// ErrTransport means a network or bridge failure.
	ErrTransport = errors.New("transport failure")

	// ErrTimeout means a bridged operation never completed in time.
	ErrTimeout = errors.New("operation timed out")

	// ErrNotFound means a profile fetch for an unknown user.
	ErrNotFound = errors.New("profile not found")

	// ErrUnsupportedOperation means the operation is invalid for the
	// active transport backend.
	ErrUnsupportedOperation = errors.New("operation not supported by this backend")

	// ErrOperationInFlight means an operation of the same kind is already
	// pending.
	ErrOperationInFlight = errors.New("operation already in flight")

	// ErrEmailExists means an account with the given email already exists.
	ErrEmailExists = errors.New("email already registered")

	// ErrNoSession means an authenticated operation was attempted without
	// a session.
	ErrNoSession = errors.New("no active session")
)

// Error codes used in completion payloads and API responses
const (
	CodeValidation  = "VALIDATION"
	CodeAuth        = "AUTH"
	CodeTransport   = "TRANSPORT"
	CodeTimeout     = "TIMEOUT"
	CodeNotFound    = "NOT_FOUND"
	CodeUnsupported = "UNSUPPORTED"
	CodeEmailExists = "EMAIL_EXISTS"
	CodeInternal    = "INTERNAL"
)

// CodeForError maps a typed error to its wire code.
func CodeForError(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrAuth):
		return CodeAuth
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnsupportedOperation):
		return CodeUnsupported
	case errors.Is(err, ErrEmailExists):
		return CodeEmailExists
	case errors.Is(err, ErrTransport):
		return CodeTransport
	default:
		return CodeInternal
	}
}

// ErrorForCode maps a wire code back to a typed error, preserving the
// original message.
func ErrorForCode(code, message string) error {
	var base error
	switch code {
	case CodeValidation:
		base = ErrValidation
	case CodeAuth:
		base = ErrAuth
	case CodeTimeout:
		base = ErrTimeout
	case CodeNotFound:
		base = ErrNotFound
	case CodeUnsupported:
		base = ErrUnsupportedOperation
	case CodeEmailExists:
		base = ErrEmailExists
	default:
		base = ErrTransport
	}
	if message == "" || message == base.Error() {
		return base
	}
	return fmt.Errorf("%w: %s", base, message)
}
