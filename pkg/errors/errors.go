// Package errors defines the sentinel error taxonomy shared across the
// search daemon: startup failures are fatal, malformed documents are
// logged and skipped, client I/O errors are scoped to one connection, and
// Empty is returned by container APIs instead of a silent sentinel value.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrStartupFailure covers socket/bind/listen/connect-to-source errors.
	// It is fatal and propagates to process exit.
	ErrStartupFailure = errors.New("startup failure")
	// ErrMalformedDocument marks a loader record missing required fields.
	// It is logged, counted, and skipped — never fatal.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrClientIO covers recv/send failure or EOF on a client connection.
	// The server closes that client and continues serving others.
	ErrClientIO = errors.New("client i/o error")
	// ErrEmpty is returned by container APIs (posting set min/max) when
	// called on an empty container. The index never triggers this itself.
	ErrEmpty = errors.New("container is empty")
)

// AppError wraps a sentinel error with a contextual message.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps sentinel with a static message.
func New(sentinel error, message string) *AppError {
	return &AppError{Err: sentinel, Message: message}
}

// Newf wraps sentinel with a formatted message.
func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}
