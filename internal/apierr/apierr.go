package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes. Callers branch on these, never on message text.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeForbiddenDomain    = "FORBIDDEN_DOMAIN"
	CodeAccessExpired      = "ACCESS_EXPIRED"
	CodeAccessNotStarted   = "ACCESS_NOT_STARTED"
	CodeNotFound           = "NOT_FOUND"
	CodeBadRequest         = "BAD_REQUEST"
	CodeConflict           = "CONFLICT"
	CodeCollaboratorOutput = "COLLABORATOR_OUTPUT"
	CodeInternal           = "INTERNAL"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(code string, err error) *Error {
	return &Error{Status: StatusFor(code), Code: code, Err: err}
}

func Newf(code string, format string, args ...any) *Error {
	return New(code, fmt.Errorf(format, args...))
}

func StatusFor(code string) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden, CodeForbiddenDomain, CodeAccessExpired, CodeAccessNotStarted:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeCollaboratorOutput:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// From normalizes any error into an *Error; unrecognized errors become INTERNAL.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(CodeInternal, err)
}
