package service

import (
	"time"
)

// Metrics defines the interface for collecting business metrics.
// This abstraction allows the application layer to remain independent of the specific monitoring implementation (e.g., Prometheus).
// Metrics 定义了收集业务指标的接口。
// 这种抽象使应用层能够独立于具体的监控实现（例如 Prometheus）。
type Metrics interface {
	// RecordSubmission records one finished submission by outcome code.
	// RecordSubmission 按结果代码记录一次完成的提交。
	RecordSubmission(outcome string, duration time.Duration)

	// RecordStaleCompletion records a completion dropped because a newer submission started.
	// RecordStaleCompletion 记录因新提交开始而被丢弃的完成结果。
	RecordStaleCompletion()

	// RecordRiskLevel records the level shown to the user.
	// RecordRiskLevel 记录展示给用户的风险等级。
	RecordRiskLevel(level string)

	// RecordSessionUpdateConflict records an optimistic session update retry.
	// RecordSessionUpdateConflict 记录一次乐观会话更新重试。
	RecordSessionUpdateConflict(backend string)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RecordSubmission(string, time.Duration) {}
func (NoopMetrics) RecordStaleCompletion()                 {}
func (NoopMetrics) RecordRiskLevel(string)                 {}
func (NoopMetrics) RecordSessionUpdateConflict(string)     {}
