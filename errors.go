package spritebuilder

import (
	"errors"
	"fmt"
)

// Wrap wraps an error by prepending additional text.
// The text can contain formatting parameters.
func Wrap(err error, msg string, v ...any) error {
	msg = fmt.Sprintf(msg, v...)
	return fmt.Errorf("%v: %w", msg, err)
}

type notFound struct {
	message string
}

// NewNotFound creates a new "not found" error, used for missing input files.
func NewNotFound(s string, v ...any) error {
	return notFound{fmt.Sprintf("not found: "+s, v...)}
}

func (n notFound) Error() string {
	return n.message
}

// IsNotFound checks if the given error is (or wraps) a "not found" error.
func IsNotFound(err error) bool {
	var nf notFound
	return errors.As(err, &nf)
}

type emptyError struct {
	message string
}

func (e emptyError) Error() string {
	return e.message
}

func newEmpty(s string, v ...any) error {
	return emptyError{fmt.Sprintf(s, v...)}
}

// IsEmpty checks if the error reports an image without any opaque content.
func IsEmpty(err error) bool {
	var e emptyError
	return errors.As(err, &e)
}

type rejected struct {
	message string
}

func (r rejected) Error() string {
	return r.message
}

func newRejected(s string, v ...any) error {
	return rejected{fmt.Sprintf(s, v...)}
}

// IsRejected checks if a source frame was refused as a plausible failed
// extraction.
func IsRejected(err error) bool {
	var r rejected
	return errors.As(err, &r)
}

type validationError struct {
	message string
}

func (v validationError) Error() string {
	return v.message
}

// NewValidationError creates an error from the given format string.
func NewValidationError(msg string, v ...any) error {
	return validationError{fmt.Sprintf(msg, v...)}
}
