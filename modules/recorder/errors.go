package recorder

import (
	"errors"
)

// ErrOutsideTargetDir is returned when a rendered file name would leave the
// target directory.
var ErrOutsideTargetDir = errors.New("file name resolves outside the target directory")

// Error is a failure while processing one connection. Retryable alone
// decides whether the connection handler reconnects.
type Error struct {
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Retryable {
		return "retryable: " + e.Err.Error()
	}
	return "fatal: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable marks err as transient. Errors that are already classified keep
// their classification.
func Retryable(err error) error {
	return classify(err, true)
}

// Fatal marks err as permanent. Errors that are already classified keep
// their classification.
func Fatal(err error) error {
	return classify(err, false)
}

func classify(err error, retryable bool) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return err
	}

	return &Error{Retryable: retryable, Err: err}
}

// IsRetryable reports whether err was classified as retryable.
// Unclassified errors are fatal.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
