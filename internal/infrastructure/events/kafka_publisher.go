// Package events publishes assessment events.
package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/crp/internal/config"
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/internal/domain/service"
	"github.com/turtacn/crp/pkg/logger"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher is a Kafka-backed implementation of the AssessmentPublisher.
type KafkaPublisher struct {
	writer MessageWriter
	logger logger.Logger
}

var _ service.AssessmentPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to the configured topic.
func NewKafkaPublisher(cfg *config.EventsConfig, log logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		BatchTimeout: cfg.BatchTimeout,
		Async:        false,
	}
	return NewKafkaPublisherWithWriter(writer, log)
}

// NewKafkaPublisherWithWriter wraps an existing writer.
func NewKafkaPublisherWithWriter(w MessageWriter, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		logger: log.WithComponent("kafka_publisher"),
	}
}

// Publish sends an event keyed by session id, so events of one session stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, event *models.AssessmentEvent) error {
	bytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal assessment event", err)
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: bytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("assessment." + event.Outcome)},
		},
	})
	if err != nil {
		p.logger.Error(ctx, "failed to write message to Kafka", err, logger.Fields{"event_id": event.EventID})
	}
	return err
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

var _ service.AssessmentPublisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, *models.AssessmentEvent) error { return nil }
func (NoopPublisher) Close() error                                          { return nil }

// New returns a Kafka publisher when events are enabled and a NoopPublisher otherwise.
func New(cfg *config.EventsConfig, log logger.Logger) service.AssessmentPublisher {
	if cfg == nil || !cfg.Enabled {
		return NoopPublisher{}
	}
	return NewKafkaPublisher(cfg, log)
}
