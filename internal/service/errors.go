package service

import (
	"errors"
	"fmt"
)

// Kind classifies a business failure. Anything that is not an *Error is an
// infrastructure failure.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindBadRequest      Kind = "bad_request"
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden)
// holds whatever the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}
	ErrBadRequest      = &Error{Kind: KindBadRequest, Message: "bad request"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "forbidden"}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func unauthenticated() *Error {
	return newError(KindUnauthenticated, "please log in to use this endpoint")
}

func badRequest(format string, args ...any) *Error {
	return newError(KindBadRequest, format, args...)
}

func notFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

// KindOf returns the kind of a business failure.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
