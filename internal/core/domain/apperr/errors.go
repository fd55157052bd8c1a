// Package apperr defines the error kinds surfaced by the serving tier.
// Every failure is local to one request and is returned to its caller tagged
// with one of these kinds.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindValidation means a required field was missing; no side effects happened.
	KindValidation Kind = "validation_error"
	// KindRemoteUnavailable means a remote store call timed out or failed.
	KindRemoteUnavailable Kind = "remote_unavailable"
	// KindNotFound is a normal negative result.
	KindNotFound Kind = "not_found"
	// KindPartialWrite means one step of a multi-key write failed and was not rolled back.
	KindPartialWrite Kind = "partial_write_failure"
	// KindInternal covers everything else.
	KindInternal Kind = "internal_error"
)

// Error carries a Kind, a human-readable message and an optional cause that
// is never shown to API consumers.
type Error struct {
	Kind    Kind   `json:"code"`
	Message string `json:"message"`
	Inner   error  `json:"-"`
}

func New(kind Kind, message string, inner error) *Error {
	return &Error{Kind: kind, Message: message, Inner: inner}
}

func Validation(message string) *Error {
	return New(KindValidation, message, nil)
}

func RemoteUnavailable(message string, inner error) *Error {
	return New(KindRemoteUnavailable, message, inner)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func PartialWrite(message string, inner error) *Error {
	return New(KindPartialWrite, message, inner)
}

func Internal(message string, inner error) *Error {
	return New(KindInternal, message, inner)
}

func (e *Error) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Message, e.Inner)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	e := As(err)
	return e != nil && e.Kind == kind
}

func IsValidation(err error) bool        { return Is(err, KindValidation) }
func IsRemoteUnavailable(err error) bool { return Is(err, KindRemoteUnavailable) }
func IsNotFound(err error) bool          { return Is(err, KindNotFound) }
func IsPartialWrite(err error) bool      { return Is(err, KindPartialWrite) }
