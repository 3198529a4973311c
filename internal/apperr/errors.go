// Package apperr defines the failure kinds returned by commands.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a command failure so callers can branch without matching
// on localized text.
type Kind string

// Failure kinds.
const (
	KindUserCancelled   Kind = "user_cancelled"
	KindInvalidPath     Kind = "invalid_path"
	KindIOFailure       Kind = "io_failure"
	KindTimeout         Kind = "timeout"
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrUserCancelled   = errors.New("user cancelled")
	ErrInvalidPath     = errors.New("invalid path")
	ErrIOFailure       = errors.New("io failure")
	ErrTimeout         = errors.New("timeout")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

var sentinels = map[Kind]error{
	KindUserCancelled:   ErrUserCancelled,
	KindInvalidPath:     ErrInvalidPath,
	KindIOFailure:       ErrIOFailure,
	KindTimeout:         ErrTimeout,
	KindInvalidArgument: ErrInvalidArgument,
	KindNotFound:        ErrNotFound,
}

// Error is a tagged command failure: a machine-checkable Kind plus the
// user-facing (localized) Message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind that wraps err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf classifies err. Tagged errors report their own kind, bare sentinels
// map to theirs, and anything else is treated as an I/O failure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for k, s := range sentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindIOFailure
}
