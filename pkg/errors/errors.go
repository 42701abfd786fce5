// Package errors defines the sentinel error kinds named in the error
// handling design, plus an AppError wrapper carrying an HTTP status and a
// message, and a helper to map any error to the status code the HTTP
// adapter should return.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserInput covers a bad subcommand, a missing required flag, or a
	// path that does not exist.
	ErrUserInput = errors.New("invalid input")
	// ErrExtraction covers an unreadable file, an unknown extension, or a
	// malformed document. Always recovered locally by the worker that hit
	// it; never propagated past internal/writer.
	ErrExtraction = errors.New("extraction failed")
	// ErrIndexIO covers failure to write a segment or persist the
	// DocumentStore.
	ErrIndexIO = errors.New("index write failed")
	// ErrIndexOpen covers a corrupt or version-mismatched on-disk file.
	ErrIndexOpen = errors.New("index open failed")
	// ErrIndexLocked means another process already holds the index
	// directory's writer lock.
	ErrIndexLocked = errors.New("index directory is locked by another writer")
	// ErrQuery covers a failure reading postings while answering a query.
	// A missing or empty index directory is not an error and returns an
	// empty result set.
	ErrQuery = errors.New("query failed")
)

// AppError wraps a sentinel with a human-readable message and, for the
// HTTP adapter, an explicit status code.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, StatusCode: statusCode}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...), StatusCode: statusCode}
}

// HTTPStatusCode maps an error to the status code §4.8 of the design
// assigns it.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	switch {
	case errors.Is(err, ErrUserInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexLocked):
		return http.StatusConflict
	case errors.Is(err, ErrQuery):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
