// Package errors defines custom error types and error handling utilities for the Credit Risk Predictor.
// This package provides structured error types that map to the prediction failure taxonomy and HTTP status codes.
package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"

	"github.com/turtacn/crp/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the machine readable error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.description
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *baseError) Code() constants.ErrorCode {
	return e.code
}

func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

func (e *baseError) Description() string {
	return e.description
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new AppError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Prediction Failure Constructors
// ================================================================================

// ErrNetworkFailure wraps a transport-level failure (offline, DNS, refused connection).
func ErrNetworkFailure(cause error) AppError {
	return NewError(
		constants.ErrCodeNetworkFailure,
		http.StatusBadGateway,
		"The prediction service could not be reached.",
		"prediction request failed",
	).WithCause(cause)
}

// ErrRequestFailed reports a non-2xx answer from the prediction service.
func ErrRequestFailed(status int) AppError {
	return NewError(
		constants.ErrCodeRequestFailed,
		http.StatusBadGateway,
		"The prediction service answered with an unsuccessful status.",
		"Failed to get prediction",
	).WithMetadata("upstream_status", status)
}

// ErrServerReported carries the message of an error field in a successful body.
func ErrServerReported(message string) AppError {
	return NewError(
		constants.ErrCodeServerReportedError,
		http.StatusBadGateway,
		"The prediction service reported an error.",
		message,
	)
}

// ErrMalformedResponse reports a body without the expected prediction arrays.
func ErrMalformedResponse(detail string) AppError {
	return NewError(
		constants.ErrCodeMalformedResponse,
		http.StatusBadGateway,
		"Invalid response format from server",
		detail,
	)
}

// ================================================================================
// Request Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) AppError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter or includes an invalid parameter value.",
		message,
	)
}

// ErrSessionNotFound creates a session_not_found error
func ErrSessionNotFound(sessionID string) AppError {
	return NewError(
		constants.ErrCodeSessionNotFound,
		http.StatusNotFound,
		"The session does not exist or has expired.",
		"session not found",
	).WithMetadata("session_id", sessionID)
}

// ErrRateLimitExceeded creates a rate_limit_exceeded error
func ErrRateLimitExceeded() AppError {
	return NewError(
		constants.ErrCodeRateLimitExceeded,
		http.StatusTooManyRequests,
		"Too many requests. Please slow down.",
		"rate limit exceeded",
	)
}

// ErrInternal creates an internal_error error
func ErrInternal(message string) AppError {
	return NewError(
		constants.ErrCodeInternal,
		http.StatusInternalServerError,
		"The server encountered an unexpected condition.",
		message,
	)
}

// ================================================================================
// Helpers
// ================================================================================

// As finds the first AppError in err's chain.
func As(err error) (AppError, bool) {
	var appErr AppError
	if goerrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the error code of err, or internal_error for foreign errors.
func CodeOf(err error) constants.ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code()
	}
	return constants.ErrCodeInternal
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code constants.ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// HTTPStatusOf returns the HTTP status for err.
func HTTPStatusOf(err error) int {
	if appErr, ok := As(err); ok && appErr.HTTPStatus() != 0 {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsPredictionFailure reports whether err belongs to the prediction failure taxonomy.
func IsPredictionFailure(err error) bool {
	switch CodeOf(err) {
	case constants.ErrCodeNetworkFailure,
		constants.ErrCodeRequestFailed,
		constants.ErrCodeServerReportedError,
		constants.ErrCodeMalformedResponse:
		return true
	default:
		return false
	}
}
