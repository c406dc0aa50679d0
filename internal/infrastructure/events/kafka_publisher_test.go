package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/crp/internal/config"
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/pkg/logger"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := new(MockWriter)
	pub := NewKafkaPublisherWithWriter(w, logger.NewNoopLogger())

	prob := 0.75
	event := &models.AssessmentEvent{
		EventID:     "e1",
		SessionID:   "s1",
		Generation:  2,
		Outcome:     "success",
		Probability: &prob,
		Level:       models.RiskLevelLow,
		OccurredAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || string(msgs[0].Key) != "s1" {
			return false
		}
		var decoded models.AssessmentEvent
		if err := json.Unmarshal(msgs[0].Value, &decoded); err != nil {
			return false
		}
		return decoded.EventID == "e1" && decoded.Generation == 2 && string(msgs[0].Headers[0].Value) == "assessment.success"
	})).Return(nil).Once()

	require.NoError(t, pub.Publish(context.Background(), event))
	w.AssertExpectations(t)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := new(MockWriter)
	pub := NewKafkaPublisherWithWriter(w, logger.NewNoopLogger())

	boom := errors.New("broker down")
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(boom)
	w.On("Close").Return(nil)

	err := pub.Publish(context.Background(), &models.AssessmentEvent{EventID: "e1", SessionID: "s1", Outcome: "network_failure"})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, pub.Close())
	w.AssertExpectations(t)
}

func TestNew_SelectsPublisher(t *testing.T) {
	assert.IsType(t, NoopPublisher{}, New(&config.EventsConfig{Enabled: false}, logger.NewNoopLogger()))
	assert.IsType(t, NoopPublisher{}, New(nil, logger.NewNoopLogger()))

	pub := New(&config.EventsConfig{Enabled: true, Brokers: []string{"localhost:9092"}, Topic: "crp.assessments"}, logger.NewNoopLogger())
	assert.IsType(t, &KafkaPublisher{}, pub)
	assert.NoError(t, pub.Close())

	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), nil))
}
