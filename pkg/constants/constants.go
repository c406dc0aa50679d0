// Package constants defines system-wide constants for the Credit Risk Predictor.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Form Field Constants
// ================================================================================

// FormField names one of the four numeric inputs of the predictor form.
type FormField string

const (
	// FieldCreditLimit is the credit limit amount
	FieldCreditLimit FormField = "creditLimit"

	// FieldAge is the applicant age in years
	FieldAge FormField = "age"

	// FieldBillAmount is the current bill amount
	FieldBillAmount FormField = "billAmount"

	// FieldPaymentAmount is the last payment amount
	FieldPaymentAmount FormField = "paymentAmount"
)

// FormFields lists the form fields in wire order.
// The prediction request carries values in exactly this order.
var FormFields = []FormField{
	FieldCreditLimit,
	FieldAge,
	FieldBillAmount,
	FieldPaymentAmount,
}

// ================================================================================
// Prediction Contract Constants
// ================================================================================

const (
	// DefaultBackendURL is used when no backend override is configured
	DefaultBackendURL = "http://localhost:5000"

	// DefaultPredictPath is the path of the prediction endpoint on the backend
	DefaultPredictPath = "/api/predict"

	// ContentTypeJSON is the content type of prediction requests
	ContentTypeJSON = "application/json"

	// GenericPredictionErrorMessage is the only failure text shown to end users
	GenericPredictionErrorMessage = "Error making prediction. Please try again."
)

// Prediction outcome values returned by the model.
const (
	PredictionNoDefault = 0
	PredictionDefault   = 1
)

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode represents a machine readable error code
type ErrorCode string

const (
	// ErrCodeNetworkFailure indicates the prediction call failed at transport level
	ErrCodeNetworkFailure ErrorCode = "network_failure"

	// ErrCodeRequestFailed indicates the backend answered with a non-2xx status
	ErrCodeRequestFailed ErrorCode = "request_failed"

	// ErrCodeServerReportedError indicates a 2xx body carrying an error field
	ErrCodeServerReportedError ErrorCode = "server_reported_error"

	// ErrCodeMalformedResponse indicates the body lacks the expected arrays
	ErrCodeMalformedResponse ErrorCode = "malformed_response"

	// ErrCodeInvalidRequest indicates a malformed inbound request
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeSessionNotFound indicates an unknown or expired session
	ErrCodeSessionNotFound ErrorCode = "session_not_found"

	// ErrCodeRateLimitExceeded indicates the caller is submitting too fast
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"

	// ErrCodeInternal indicates an unexpected server condition
	ErrCodeInternal ErrorCode = "internal_error"
)

// ================================================================================
// Session Constants
// ================================================================================

// SessionBackend selects where form state is kept between requests
type SessionBackend string

const (
	// SessionBackendMemory keeps sessions in process memory
	SessionBackendMemory SessionBackend = "memory"

	// SessionBackendRedis keeps sessions in Redis
	SessionBackendRedis SessionBackend = "redis"
)

const (
	// DefaultSessionCookieName is the cookie carrying the session id
	DefaultSessionCookieName = "crp_session"

	// SessionHeader lets API clients pass the session id explicitly
	SessionHeader = "X-Session-ID"

	// DefaultSessionTTL is how long an idle session is retained
	DefaultSessionTTL = 30 * time.Minute

	// SessionKeyPrefix namespaces session keys in shared caches
	SessionKeyPrefix = "crp:session:"

	// SessionUpdateMaxRetries bounds optimistic transaction retries
	SessionUpdateMaxRetries = 10
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is used for storing values in context
type ContextKey string

const (
	// ContextKeyRequestID holds the request id
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeySessionID holds the session id
	ContextKeySessionID ContextKey = "session_id"

	// ContextKeyTraceID holds the trace id
	ContextKeyTraceID ContextKey = "trace_id"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// ================================================================================
// Service Identity
// ================================================================================

const (
	// ServiceName is used for tracing and metrics namespaces
	ServiceName = "credit-risk-predictor"

	// MetricsNamespace prefixes every Prometheus metric
	MetricsNamespace = "crp"
)

//Personal.AI order the ending
