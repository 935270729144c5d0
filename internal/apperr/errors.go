// Package apperr defines the error taxonomy shared by the mediation layer,
// the authorization gate and the GraphQL binding.
//
// Services return typed errors and callers branch with errors.Is:
//
//	if errors.Is(err, apperr.ErrNotFound) {
//	    return nil, nil
//	}
//
// An *Error also carries GraphQL extensions, so returning one from a resolver
// surfaces its code under errors[].extensions.code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound             Code = "NOT_FOUND"
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"
	CodeAuthenticationFailed Code = "AUTHENTICATION_FAILED"
	CodeForbidden            Code = "FORBIDDEN"
	CodeUpstreamFailure      Code = "UPSTREAM_FAILURE"
)

// HTTPStatus returns the status used when an error is reported outside of a
// GraphQL response body.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeAuthenticationFailed:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code and a caller-facing message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Extensions is picked up by graph-gophers/graphql-go and copied into the
// GraphQL error object.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Code)}
}

// HTTPStatus returns the HTTP status for this error's code.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrNotFound             = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidArgument      = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrAuthenticationFailed = &Error{Code: CodeAuthenticationFailed, Message: "authentication failed"}
	ErrForbidden            = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrUpstreamFailure      = &Error{Code: CodeUpstreamFailure, Message: "upstream failure"}
)

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(msg string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

func InvalidArgumentf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func AuthenticationFailed(msg string) *Error {
	return &Error{Code: CodeAuthenticationFailed, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func Forbiddenf(format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps a transport or store failure.
func Upstream(msg string, cause error) *Error {
	return &Error{Code: CodeUpstreamFailure, Message: msg, cause: cause}
}

func Upstreamf(cause error, format string, args ...any) *Error {
	return &Error{Code: CodeUpstreamFailure, Message: fmt.Sprintf(format, args...), cause: cause}
}

// From returns the *Error in err's chain, or wraps err as an upstream failure
// when it carries no code.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Upstream("internal error", err)
}

// CodeOf returns the code in err's chain, or "" when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
