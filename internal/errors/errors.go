// Package errors provides custom error types and handling functions used
// throughout the module. It wraps github.com/pkg/errors so call sites get
// stack traces, and adds a marker for errors that should abort the whole
// process rather than a single operation.
package errors

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// New creates a new error based on a message.
func New(message string) error {
	return errors.New(message)
}

// Errorf creates a new error based on a format string and values.
func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Wrap wraps an error and adds additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, message)
}

// Wrapf wraps an error and adds additional context with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// WithMessage annotates err with a new message.
func WithMessage(err error, message string) error {
	return errors.WithMessage(err, message)
}

// Cause returns the underlying cause of an error, if possible.
func Cause(err error) error {
	return errors.Cause(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
