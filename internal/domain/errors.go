// Package domain defines core types and errors for the Athena query client.
package domain

import (
	"errors"
	"fmt"
)

// ValidationError indicates invalid local input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// SubmissionError indicates the service rejected a query submission.
// It is returned before any polling begins.
type SubmissionError struct {
	Database string
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit query to database %q: %v", e.Database, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollingTransientError wraps a failed readiness check. The poll loop
// retries these until the result becomes readable.
type PollingTransientError struct {
	ExecutionID string
	Attempt     int
	Err         error
}

func (e *PollingTransientError) Error() string {
	return fmt.Sprintf("query %s not ready (attempt %d): %v", e.ExecutionID, e.Attempt, e.Err)
}

func (e *PollingTransientError) Unwrap() error { return e.Err }

// PollExhaustedError is returned when a bounded poll loop runs out of attempts.
type PollExhaustedError struct {
	ExecutionID string
	Attempts    int
	Err         error
}

func (e *PollExhaustedError) Error() string {
	return fmt.Sprintf("query %s still not ready after %d attempts: %v", e.ExecutionID, e.Attempts, e.Err)
}

func (e *PollExhaustedError) Unwrap() error { return e.Err }

// QueryFailedError reports a query the service moved to FAILED or CANCELLED.
type QueryFailedError struct {
	ExecutionID string
	State       ExecutionState
	Reason      string
}

func (e *QueryFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("query %s %s", e.ExecutionID, e.State)
	}
	return fmt.Sprintf("query %s %s: %s", e.ExecutionID, e.State, e.Reason)
}

// FetchError indicates a failure while reading results of a finished query.
type FetchError struct {
	ExecutionID string
	Err         error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch results of query %s: %v", e.ExecutionID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StorageError indicates a failure persisting results to object storage.
type StorageError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store results at %s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a readiness check failure that the poll
// loop treats as retryable.
func IsTransient(err error) bool {
	var pe *PollingTransientError
	return errors.As(err, &pe)
}
