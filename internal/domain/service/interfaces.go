// Package service defines the domain services and the ports they depend on.
package service

import (
	"context"

	"github.com/turtacn/crp/internal/domain/models"
)

// PredictionGateway calls the remote model service.
// PredictionGateway 调用远程模型服务。
type PredictionGateway interface {
	// Predict sends one request and returns the decoded answer. Failures are
	// reported with the prediction error codes (network_failure,
	// request_failed, server_reported_error, malformed_response).
	// Predict 发送一次请求并返回解码后的应答。
	Predict(ctx context.Context, req *models.PredictionRequest) (*models.PredictionResponse, error)
}

// AssessmentPublisher emits an event for every applied submission.
// AssessmentPublisher 为每一次已应用的提交发布事件。
type AssessmentPublisher interface {
	Publish(ctx context.Context, event *models.AssessmentEvent) error
	Close() error
}

// HealthChecker is implemented by dependencies that can report readiness.
// HealthChecker 由可以报告就绪状态的依赖实现。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// DetailedHealthChecker also reports diagnostics such as pool statistics.
// The health endpoint prefers HealthCheck over Ping when both exist.
type DetailedHealthChecker interface {
	HealthChecker
	HealthCheck(ctx context.Context) (map[string]interface{}, error)
}
