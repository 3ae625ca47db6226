// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Ingestion errors.
	ErrUnsupportedFormat   = errors.New("unsupported file format")
	ErrNoValidTransactions = errors.New("no valid transactions found")
	ErrPasswordRequired    = errors.New("document is password protected")
	ErrIncorrectPassword   = errors.New("incorrect document password")
	ErrNoRecognizableAlert = errors.New("no recognizable alert in email body")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// HeaderNotFoundError indicates that no header row could be located within
// the scan budget. It carries a sample of the first columns seen so the
// failure is diagnosable from logs alone.
type HeaderNotFoundError struct {
	ColumnSample []string
	RowsScanned  int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("header row not found after scanning %d rows (first columns: %s)",
		e.RowsScanned, strings.Join(e.ColumnSample, " | "))
}

// IsHeaderNotFound reports whether err is a HeaderNotFoundError.
func IsHeaderNotFound(err error) bool {
	var hnf *HeaderNotFoundError
	return errors.As(err, &hnf)
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
