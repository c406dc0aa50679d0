package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/crp/internal/infrastructure/monitoring"
	"github.com/turtacn/crp/pkg/constants"
)

// ObservabilityMiddleware returns a Gin middleware that integrates Prometheus metrics and OpenTelemetry tracing.
// For each HTTP request, it continues the caller's trace (W3C traceparent), starts a server span and
// records request totals, duration and the in-flight gauge, labeled by method, route template and status.
// ObservabilityMiddleware 返回一个集成了 Prometheus 指标和 OpenTelemetry 跟踪的 Gin 中间件。
// 指标使用 HTTP 方法、请求路径（模板）和状态代码进行标记，trace_id 会写入上下文供日志使用。
func ObservabilityMiddleware(tm *monitoring.TracingManager, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		// Use c.FullPath() to get the route template for low-cardinality labels.
		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}

		ctx := tm.ExtractTraceContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tm.StartSpan(ctx, c.Request.Method+" "+path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if traceID := tm.GetTraceID(ctx); traceID != "" {
			c.Set(string(constants.ContextKeyTraceID), traceID)
			ctx = context.WithValue(ctx, constants.ContextKeyTraceID, traceID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		statusCode := c.Writer.Status()
		status := strconv.Itoa(statusCode)
		metrics.ObserveHTTPRequest(c.Request.Method, path, status, time.Since(start))

		tm.SetSpanAttributes(ctx, map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.route":       path,
			"http.status_code": statusCode,
			"http.client_ip":   c.ClientIP(),
		})
		if statusCode < 500 {
			return
		}
		// handlers attach the AppError through dto.SendError
		if last := c.Errors.Last(); last != nil {
			tm.RecordError(ctx, last.Err, map[string]interface{}{"http.status_code": statusCode})
			return
		}
		tm.SetSpanStatus(ctx, codes.Error, status)
	}
}

//Personal.AI order the ending
