// Package apperr contains the error types handlers hand over to the
// error renderer middleware
package apperr

import (
	"errors"
	"net/http"
)

// Error is an error with a status code attached. Soft errors are part of the
// normal API flow and get rendered inside a 200 response body, everything
// else sets the real HTTP status.
type Error struct {
	Status  int
	Message string
	Soft    bool
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation is returned when a request body or query has the wrong shape
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Authorization is returned by the access gate
func Authorization(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// Internal wraps an unexpected error. The message of err is passed through
// to the client.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
}

func WithStatus(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg, Soft: true}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg, Soft: true}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg, Soft: true}
}

func Gone(msg string) *Error {
	return &Error{Status: http.StatusGone, Message: msg, Soft: true}
}

// Resolve turns any error into an *Error. Errors that aren't an *Error
// become a 500 carrying their message.
func Resolve(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return Internal(err)
}
