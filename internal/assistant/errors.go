package assistant

import (
	"errors"
	"fmt"
)

// Kind classifies failures for the caller.
type Kind int

const (
	// KindUnexpected is anything not otherwise classified.
	KindUnexpected Kind = iota
	// KindInvalidInput covers bad file types, bad encodings, malformed requests and
	// querying an empty store.
	KindInvalidInput
	// KindNotFound is an unknown document id.
	KindNotFound
	// KindNotConfigured means the answer provider has no credentials.
	KindNotConfigured
	// KindProviderFailure wraps a failed call to the answer provider.
	KindProviderFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindNotConfigured:
		return "not_configured"
	case KindProviderFailure:
		return "provider_failure"
	default:
		return "unexpected"
	}
}

// Error is a classified failure with a message safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnexpected when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
