package models

import (
	"fmt"
	"net/http"
)

// ErrorCode is the stable machine classification attached to every terminal
// failure. Clients branch on the code; the human-readable message may change.
type ErrorCode string

const (
	CodeBinaryNotFound       ErrorCode = "binary_not_found"
	CodeAuthenticationFailed ErrorCode = "authentication_failed"
	CodeNoURLProvided        ErrorCode = "no_url_provided"
	CodeDownloadFailed       ErrorCode = "download_failed"
	CodeEmptyInput           ErrorCode = "empty_input"
	CodeInsufficientTime     ErrorCode = "insufficient_time"
	CodeAllStrategiesFailed  ErrorCode = "all_strategies_failed"
	CodeEmptyOutput          ErrorCode = "empty_output"
	CodeInternal             ErrorCode = "internal_error"
)

// ConvertError is the typed failure carried from the core pipeline out to the
// HTTP boundary. The underlying cause is preserved for diagnostics without
// replacing the user-facing classification.
type ConvertError struct {
	Code    ErrorCode
	Message string
	Err     error

	// Status overrides the default HTTP mapping for the code when non-zero.
	// DownloadFailed uses this to distinguish a bad URL (400) from an
	// upstream timeout (504).
	Status int

	// Attempted lists strategy names in attempt order. Populated only for
	// AllStrategiesFailed and InsufficientTime raised mid-chain.
	Attempted []string
}

func (e *ConvertError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConvertError) Unwrap() error { return e.Err }

// Is lets errors.Is match two ConvertErrors by code alone, so callers can
// compare against a bare sentinel like &ConvertError{Code: CodeEmptyInput}.
func (e *ConvertError) Is(target error) bool {
	t, ok := target.(*ConvertError)
	return ok && t.Code == e.Code
}

// HTTPStatus maps the classification to a response status. The mapping
// follows the error taxonomy: locator failures are a service problem (503),
// exhausted strategy lists are an unprocessable input (422), and budget
// exhaustion is a gateway timeout (504).
func (e *ConvertError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Code {
	case CodeBinaryNotFound:
		return http.StatusServiceUnavailable
	case CodeAuthenticationFailed:
		return http.StatusUnauthorized
	case CodeNoURLProvided:
		return http.StatusBadRequest
	case CodeDownloadFailed:
		return http.StatusBadRequest
	case CodeInsufficientTime:
		return http.StatusGatewayTimeout
	case CodeAllStrategiesFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// NewError builds a ConvertError with no underlying cause.
func NewError(code ErrorCode, format string, args ...interface{}) *ConvertError {
	return &ConvertError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a ConvertError around an underlying cause.
func WrapError(code ErrorCode, err error, format string, args ...interface{}) *ConvertError {
	return &ConvertError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}
