package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by services and handlers
const (
	CodeInternal        = "INTERNAL"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeUpstream        = "UPSTREAM"
)

// AppError carries a machine readable code next to a human readable message
type AppError struct {
	code    string
	message string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.message, e.err.Error())
	}
	return e.message
}

// Code returns the error code
func (e *AppError) Code() string {
	return e.code
}

// Message returns the message without the wrapped cause
func (e *AppError) Message() string {
	return e.message
}

func (e *AppError) Unwrap() error {
	return e.err
}

// New creates a new application error
func New(code, message string, err error) *AppError {
	return &AppError{
		code:    code,
		message: message,
		err:     err,
	}
}

// Unauthenticated reports a missing or invalid identity
func Unauthenticated(message string) *AppError {
	return New(CodeUnauthenticated, message, nil)
}

// Invalid reports a validation failure
func Invalid(message string) *AppError {
	return New(CodeInvalidArgument, message, nil)
}

// NotFound reports a missing referenced entity
func NotFound(message string) *AppError {
	return New(CodeNotFound, message, nil)
}

// Conflict reports a duplicate or already applied action
func Conflict(message string) *AppError {
	return New(CodeConflict, message, nil)
}

// Upstream reports a failing store or external provider
func Upstream(message string, err error) *AppError {
	return New(CodeUpstream, message, err)
}

// Wrap wraps err keeping its code when it already is an AppError.
// Plain errors become upstream failures.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return New(appErr.Code(), message, err)
	}

	return New(CodeUpstream, message, err)
}

// CodeOf extracts the error code, INTERNAL for foreign errors
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return CodeInternal
}

// Is reports whether err carries the given code
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps an error code to an HTTP status code
func HTTPStatus(code string) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the outermost message of err, safe to show to clients
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	return "internal server error"
}
