package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can decide whether to retry,
// surface it to the client, or dead-letter the work item.
type Kind int

const (
	// KindValidation is the caller's fault. Never retried.
	KindValidation Kind = iota
	// KindTransient is a temporary dependency failure. Retried with backoff.
	KindTransient
	// KindPermanent exhausted its retry budget or can never succeed.
	KindPermanent
	// KindConflict means two writers raced. Resolved by re-reading and retrying.
	KindConflict
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Transient(msg string, err error) *Error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

func Permanent(msg string, err error) *Error {
	return &Error{Kind: KindPermanent, Msg: msg, Err: err}
}

func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Msg: msg, Err: err}
}

func isKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

func IsValidation(err error) bool { return isKind(err, KindValidation) }
func IsTransient(err error) bool  { return isKind(err, KindTransient) }
func IsPermanent(err error) bool  { return isKind(err, KindPermanent) }
func IsConflict(err error) bool   { return isKind(err, KindConflict) }
