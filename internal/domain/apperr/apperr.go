// Package apperr defines the service's error taxonomy. Every failure
// that crosses a component boundary is one of these codes so that
// handlers can map it to a stable HTTP status and callers can branch
// on errors.As instead of string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidState     = "INVALID_STATE"
	CodeConflict         = "CONFLICT"
	CodeAmountMismatch   = "AMOUNT_MISMATCH"
	CodeGatewayError     = "GATEWAY_ERROR"
	CodeGatewayTimeout   = "GATEWAY_TIMEOUT"
	CodeSignatureInvalid = "SIGNATURE_INVALID"
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeInternal         = "INTERNAL"
)

// Error carries a taxonomy code, a client-safe message and the
// wrapped cause.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.message, e.err.Error())
	}
	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Message() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.err
}

func New(code string, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code string, message string, err error) *Error {
	return &Error{code: code, message: message, err: err}
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func InvalidState(message string) *Error {
	return New(CodeInvalidState, message)
}

func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

func AmountMismatch(message string) *Error {
	return New(CodeAmountMismatch, message)
}

func GatewayError(message string, err error) *Error {
	return Wrap(CodeGatewayError, message, err)
}

func GatewayTimeout(message string, err error) *Error {
	return Wrap(CodeGatewayTimeout, message, err)
}

func SignatureInvalid() *Error {
	return New(CodeSignatureInvalid, "invalid webhook signature")
}

// CodeOf extracts the taxonomy code from any error, defaulting to
// INTERNAL for plain errors.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return CodeInternal
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps a taxonomy code to its stable HTTP status.
func HTTPStatus(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidState, CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeAmountMismatch:
		return http.StatusUnprocessableEntity
	case CodeGatewayError:
		return http.StatusBadGateway
	case CodeGatewayTimeout:
		return http.StatusGatewayTimeout
	case CodeSignatureInvalid:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
