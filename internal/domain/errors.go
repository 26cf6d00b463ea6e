package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across services and mapped to HTTP statuses by the API layer.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInvalidAssignee   = "INVALID_ASSIGNEE"
	CodeRateLimited       = "RATE_LIMITED"
	CodeUpstreamFailure   = "UPSTREAM_FAILURE"
	CodeInternal          = "INTERNAL"
)

// Error is a domain error carrying the HTTP status it should map to.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsError unwraps a *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

// NotFound covers both missing rows and rows hidden by the tenancy filter.
// The two cases are deliberately indistinguishable to callers.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func InvalidInput(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeInvalidInput, Message: message}
}

func InvalidTransition(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeInvalidTransition, Message: message}
}

func InvalidAssignee(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeInvalidAssignee, Message: message}
}

func RateLimited(message string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: message}
}

func UpstreamFailure(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeUpstreamFailure, Message: message}
}

func Internal(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: message}
}
