package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced to a client wraps exactly one of these.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("unavailable")
	ErrInternal        = errors.New("internal error")
)

// Error carries a kind, a client-safe detail and an optional cause.
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: cause}
}

func BadRequest(detail string) error      { return newError(ErrBadRequest, detail, nil) }
func Unauthenticated(detail string) error { return newError(ErrUnauthenticated, detail, nil) }
func Conflict(detail string) error        { return newError(ErrConflict, detail, nil) }
func NotFound(detail string) error        { return newError(ErrNotFound, detail, nil) }

func Unavailable(detail string, cause error) error { return newError(ErrUnavailable, detail, cause) }
func Internal(detail string, cause error) error    { return newError(ErrInternal, detail, cause) }

var kinds = []error{ErrBadRequest, ErrUnauthenticated, ErrConflict, ErrNotFound, ErrUnavailable, ErrInternal}

// KindOf returns the kind sentinel err wraps, or ErrInternal.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// KindName is the stable, machine-readable name of a kind.
func KindName(kind error) string {
	switch kind {
	case ErrBadRequest:
		return "bad_request"
	case ErrUnauthenticated:
		return "unauthenticated"
	case ErrConflict:
		return "conflict"
	case ErrNotFound:
		return "not_found"
	case ErrUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Detail returns the client-safe message of err. Causes of internal and
// unavailable errors are never included.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	switch KindOf(err) {
	case ErrUnavailable:
		return "service unavailable"
	case ErrInternal:
		return "internal error"
	}
	return err.Error()
}
