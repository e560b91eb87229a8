package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error for transport mapping.
type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindValidation    Kind = "VALIDATION_FAILED"
	KindRequestFailed Kind = "REQUEST_FAILED"
	KindInternal      Kind = "INTERNAL"
)

// Sentinels usable with errors.Is.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrRequestFailed = &Error{Kind: KindRequestFailed}
)

// Error is a typed domain error carrying a kind and a human readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is a domain error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewNotFoundError reports a missing entity, or one the caller may not see.
func NewNotFoundError(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s with id %v not found", entity, id)}
}

// NewValidationError reports invalid input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewRequestFailedError reports a well-formed request that cannot be served.
func NewRequestFailedError(message string) *Error {
	return &Error{Kind: KindRequestFailed, Message: message}
}

// NewInvalidStateError reports a disallowed state transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Kind: KindRequestFailed, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// KindOf returns the kind of err, or KindInternal for non-domain errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
