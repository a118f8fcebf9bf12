// Package staterr defines the error taxonomy shared by all computation
// engines. Every engine failure is one of three kinds: malformed or missing
// input, a value outside its valid domain, or a dataset too small for the
// requested statistic. The dispatch layer maps kinds to HTTP statuses.
package staterr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"
	KindInvalidRange     Kind = "invalid_range"
	KindInsufficientData Kind = "insufficient_data"
)

// Error is a classified computation error with a human-readable message.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

// Kind returns the error classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// InvalidInput reports a malformed or missing field.
func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{kind: KindInvalidInput, msg: fmt.Sprintf(format, args...)}
}

// InvalidRange reports a value outside its valid domain.
func InvalidRange(format string, args ...interface{}) *Error {
	return &Error{kind: KindInvalidRange, msg: fmt.Sprintf(format, args...)}
}

// InsufficientData reports a dataset too small for the requested statistic.
func InsufficientData(format string, args ...interface{}) *Error {
	return &Error{kind: KindInsufficientData, msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification from err. The second return value is
// false when err is not a taxonomy error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return "", false
}
