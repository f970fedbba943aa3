package errors

import "errors"

// Code identifies a structured error type used across the application.
type Code string

const (
	CodeUnknown Code = "unknown"

	// Transport and HTTP classification
	CodeTransport    Code = "transport"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeValidation   Code = "validation"
	CodeServer       Code = "server"
	CodeParseFailed  Code = "parse_failed"

	// View state machine
	CodeInFlight        Code = "in_flight"
	CodeNoForm          Code = "no_form"
	CodeUnknownRecord   Code = "unknown_record"
	CodeNoPendingDelete Code = "no_pending_delete"

	CodeConfigurationError Code = "configuration_error"
)

// Error represents a structured error with a machine-readable code plus message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// CodeOf walks the error chain and returns the first structured code found.
func CodeOf(err error) Code {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// Retryable reports whether re-triggering the same action could succeed
// without the user changing anything first.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeTransport, CodeServer, CodeUnknown:
		return true
	default:
		return false
	}
}
