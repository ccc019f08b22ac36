package errors

import (
	"errors"
	"strings"
)

var (
	// ErrNotImplemented marks a definition whose call step was never provided.
	ErrNotImplemented = errors.New("not implemented")
	// ErrInvalidArgument is a generic sentinel for invalid input or configuration.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingOutput is returned when a presenter leaves a required output unset.
	ErrMissingOutput = errors.New("missing required output")
	// ErrUnknownAttribute is returned when input names an attribute nobody declared.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrUnknownOutput is returned when a presenter writes an undeclared output.
	ErrUnknownOutput = errors.New("unknown output")
	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("duplicate registration")
	// ErrSealed is returned when a sealed registry is mutated.
	ErrSealed = errors.New("registry sealed")
	// ErrRetryable tags transient data-access failures.
	ErrRetryable = errors.New("retryable")
	// ErrConflict tags unique/concurrency conflicts.
	ErrConflict = errors.New("conflict")
)

// NotImplemented tags msg as a not-implemented programmer error.
func NotImplemented(msg string) error {
	return errors.Join(ErrNotImplemented, errors.New(strings.TrimSpace(msg)))
}

// InvalidArgument tags msg as an invalid-argument error.
func InvalidArgument(msg string) error {
	return errors.Join(ErrInvalidArgument, errors.New(strings.TrimSpace(msg)))
}

// Tag joins sentinel with err so that errors.Is matches both.
func Tag(sentinel, err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(sentinel, err)
}
