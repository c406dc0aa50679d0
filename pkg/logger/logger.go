// Package logger provides structured logging capabilities for the Credit Risk Predictor.
// The concrete implementation lives in internal/infrastructure/monitoring and is backed by zap.
package logger

import (
	"context"
	"time"
)

// ================================================================================
// Logger Interface
// ================================================================================

// Fields is a set of key-value pairs attached to a log entry
type Fields map[string]interface{}

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields ...Fields)

	// Info logs an informational message
	Info(ctx context.Context, msg string, fields ...Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields ...Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields ...Fields)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields creates a new logger with additional fields
	WithFields(fields Fields) Logger

	// WithComponent creates a new logger for a specific component
	WithComponent(component string) Logger
}

// ================================================================================
// Performance Logging
// ================================================================================

// SlowOperationThreshold marks operations that are logged at warn level
const SlowOperationThreshold = 1 * time.Second

// StartOperation returns a function that logs the duration of an operation when called.
func StartOperation(ctx context.Context, log Logger, operation string) func(Fields) {
	start := time.Now()

	return func(fields Fields) {
		duration := time.Since(start)
		merged := Fields{
			"operation":   operation,
			"duration_ms": duration.Milliseconds(),
		}
		for k, v := range fields {
			merged[k] = v
		}

		if duration > SlowOperationThreshold {
			log.Warn(ctx, "Slow operation detected", merged)
		} else {
			log.Debug(ctx, "Operation completed", merged)
		}
	}
}

//Personal.AI order the ending
