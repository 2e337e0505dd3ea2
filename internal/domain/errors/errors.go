// internal/domain/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so that every transport can map it consistently
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindNotFound           Kind = "not_found"
	KindSignatureInvalid   Kind = "signature_invalid"
	KindServiceUnavailable Kind = "service_unavailable"
	KindExternal           Kind = "external"
	KindInternal           Kind = "internal"
)

// Error is a classified domain error
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is comparisons. Any *Error matches the sentinel of its kind.
var (
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrSignatureInvalid   = &Error{Kind: KindSignatureInvalid}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrExternal           = &Error{Kind: KindExternal}
	ErrInternal           = &Error{Kind: KindInternal}
)

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument reports malformed or missing caller input
func InvalidArgument(format string, args ...interface{}) error {
	return newf(KindInvalidArgument, format, args...)
}

// NotFound reports a missing or foreign-owned resource
func NotFound(format string, args ...interface{}) error {
	return newf(KindNotFound, format, args...)
}

// SignatureInvalid reports a payment confirmation whose signature does not match
func SignatureInvalid(format string, args ...interface{}) error {
	return newf(KindSignatureInvalid, format, args...)
}

// ServiceUnavailable reports missing configuration for a required collaborator
func ServiceUnavailable(format string, args ...interface{}) error {
	return newf(KindServiceUnavailable, format, args...)
}

// External wraps a downstream gateway failure
func External(err error, format string, args ...interface{}) error {
	e := newf(KindExternal, format, args...)
	e.Err = err
	return e
}

// Internal wraps an unexpected infrastructure failure (storage, encoding)
func Internal(err error, format string, args ...interface{}) error {
	e := newf(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of err, or KindInternal for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of a classified error.
// Unclassified errors get a generic message so raw driver text is not leaked.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal && e.Message == "" {
			return "internal error"
		}
		if e.Message != "" {
			return e.Message
		}
		return string(e.Kind)
	}
	return "internal error"
}

// Classify returns err unchanged when it already carries a kind, otherwise wraps it as internal
func Classify(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Internal(err, format, args...)
}
