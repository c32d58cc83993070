package api

import "github.com/cockroachdb/errors"

type ErrorCode string

var DefaultErrorCode = ErrorCode("unknown_error")

// Error is the one error type that crosses the usecase boundary. It pairs
// the internal error chain with the code and user-facing message that the
// gateway needs to build an HTTP response.
type Error struct {
	ErrorCode     ErrorCode
	UserMessage   string
	InternalError error
}

func CommitError(err error, errorCode ErrorCode, userMessage string) *Error {
	return &Error{
		ErrorCode:     errorCode,
		UserMessage:   userMessage,
		InternalError: err,
	}
}

func WrapError(err *Error, msg string) *Error {
	return &Error{
		ErrorCode:     err.ErrorCode,
		UserMessage:   err.UserMessage,
		InternalError: errors.Wrap(err.InternalError, msg),
	}
}

func (e Error) Error() string {
	return e.InternalError.Error()
}

func (e Error) Cause() error {
	return e.InternalError
}

func (e Error) Unwrap() error {
	return e.InternalError
}
