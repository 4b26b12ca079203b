package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller errors: bad series, bad window, bad method.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternalConsistency marks assembled output that disagrees with its input.
	ErrInternalConsistency = errors.New("internal consistency")
)

// DetectionError carries a kind sentinel and a caller facing message.
type DetectionError struct {
	Kind    error
	Message string
}

func (e *DetectionError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match the kind sentinel.
func (e *DetectionError) Unwrap() error {
	return e.Kind
}

// InvalidInput creates an ErrInvalidInput error.
func InvalidInput(msg string) error {
	return &DetectionError{Kind: ErrInvalidInput, Message: msg}
}

// InvalidInputf creates an ErrInvalidInput error with formatting.
func InvalidInputf(format string, a ...interface{}) error {
	return InvalidInput(fmt.Sprintf(format, a...))
}

// InternalConsistencyf creates an ErrInternalConsistency error with formatting.
func InternalConsistencyf(format string, a ...interface{}) error {
	return &DetectionError{Kind: ErrInternalConsistency, Message: fmt.Sprintf(format, a...)}
}

// ErrorKind names the kind of err for metrics and wire bodies.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrInternalConsistency):
		return "internal_consistency"
	default:
		return "internal_error"
	}
}
