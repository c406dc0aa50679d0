// Package service provides application-level services that orchestrate domain services and repositories
package service

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/crp/internal/application/dto"
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/internal/domain/repository"
	domainService "github.com/turtacn/crp/internal/domain/service"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
	"github.com/turtacn/crp/pkg/utils"
)

// OutcomeSuccess labels submissions that produced a prediction.
const OutcomeSuccess = "success"

// errStaleCompletion aborts a session update whose generation is no longer current.
var errStaleCompletion = goerrors.New("stale completion")

// PredictionAppService defines the interface for the predictor form controller
type PredictionAppService interface {
	// GetState returns the session, creating an idle one on first use
	GetState(ctx context.Context, sessionID string) (*models.FormState, error)

	// UpdateField sets one field to the raw text typed by the user
	UpdateField(ctx context.Context, sessionID, name, value string) (*models.FormState, error)

	// UpdateFields replaces all four fields
	UpdateFields(ctx context.Context, sessionID string, fields models.FormInput) (*models.FormState, error)

	// Submit sends the session's fields to the model service and applies the outcome
	Submit(ctx context.Context, sessionID string) (*dto.SubmissionResult, error)

	// Predict runs one prediction without touching any session
	Predict(ctx context.Context, fields models.FormInput) (*dto.PredictionResult, error)
}

// Option customizes the service.
type Option func(*predictionAppServiceImpl)

// WithPublisher sets the assessment event publisher.
func WithPublisher(p domainService.AssessmentPublisher) Option {
	return func(s *predictionAppServiceImpl) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m domainService.Metrics) Option {
	return func(s *predictionAppServiceImpl) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer used for submission spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *predictionAppServiceImpl) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *predictionAppServiceImpl) {
		s.now = now
	}
}

// predictionAppServiceImpl is the concrete implementation of PredictionAppService
type predictionAppServiceImpl struct {
	sessions  repository.SessionRepository
	gateway   domainService.PredictionGateway
	publisher domainService.AssessmentPublisher
	metrics   domainService.Metrics
	tracer    trace.Tracer
	logger    logger.Logger
	now       func() time.Time
}

// NewPredictionAppService creates a new instance of PredictionAppService
func NewPredictionAppService(
	sessions repository.SessionRepository,
	gateway domainService.PredictionGateway,
	log logger.Logger,
	opts ...Option,
) PredictionAppService {
	s := &predictionAppServiceImpl{
		sessions:  sessions,
		gateway:   gateway,
		publisher: noopPublisher{},
		metrics:   domainService.NoopMetrics{},
		tracer:    otel.Tracer(constants.ServiceName),
		logger:    log.WithComponent("prediction_app_service"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState implements session lookup with lazy creation
func (s *predictionAppServiceImpl) GetState(ctx context.Context, sessionID string) (*models.FormState, error) {
	if sessionID == "" {
		return nil, errors.ErrInvalidRequest("session id is required")
	}

	state, err := s.sessions.Get(ctx, sessionID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, constants.ErrCodeSessionNotFound) {
		s.logger.Error(ctx, "Failed to load session", err, logger.Fields{"session_id": sessionID})
		return nil, err
	}
	return s.sessions.Create(ctx, sessionID)
}

// UpdateField implements a single keystroke update
func (s *predictionAppServiceImpl) UpdateField(ctx context.Context, sessionID, name, value string) (*models.FormState, error) {
	if !utils.IsFormField(name) {
		return nil, errors.ErrInvalidRequest("unknown form field").WithMetadata("field", name)
	}
	return s.mutate(ctx, sessionID, func(state *models.FormState) error {
		return state.Fields.Set(constants.FormField(name), value)
	})
}

// UpdateFields implements a whole form update
func (s *predictionAppServiceImpl) UpdateFields(ctx context.Context, sessionID string, fields models.FormInput) (*models.FormState, error) {
	return s.mutate(ctx, sessionID, func(state *models.FormState) error {
		state.Fields = fields
		return nil
	})
}

func (s *predictionAppServiceImpl) mutate(ctx context.Context, sessionID string, fn repository.UpdateFunc) (*models.FormState, error) {
	if _, err := s.GetState(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.sessions.Update(ctx, sessionID, func(state *models.FormState) error {
		if err := fn(state); err != nil {
			return err
		}
		state.UpdatedAt = s.now().UTC()
		return nil
	})
}

// Submit implements one submission.
//
// The session enters loading and takes a new generation before the call. The
// outcome is written back only while that generation is still current, so a
// slow answer can never overwrite the answer to a later submission.
func (s *predictionAppServiceImpl) Submit(ctx context.Context, sessionID string) (*dto.SubmissionResult, error) {
	if _, err := s.GetState(ctx, sessionID); err != nil {
		return nil, err
	}

	var (
		generation uint64
		fields     models.FormInput
	)
	if _, err := s.sessions.Update(ctx, sessionID, func(state *models.FormState) error {
		generation = state.BeginSubmission(s.now().UTC())
		fields = state.Fields
		return nil
	}); err != nil {
		s.logger.Error(ctx, "Failed to start submission", err, logger.Fields{"session_id": sessionID})
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "PredictionAppService.Submit", trace.WithAttributes(
		attribute.String("crp.session_id", sessionID),
		attribute.Int64("crp.generation", int64(generation)),
	))
	defer span.End()

	start := s.now()
	result, predictErr := s.Predict(ctx, fields)
	latency := s.now().Sub(start)

	outcome := OutcomeSuccess
	if predictErr != nil {
		outcome = string(errors.CodeOf(predictErr))
		span.RecordError(predictErr)
		span.SetStatus(codes.Error, outcome)
		s.logger.Error(ctx, "Prediction failed", predictErr, logger.Fields{
			"session_id": sessionID,
			"generation": generation,
			"code":       outcome,
		})
	}

	// The outcome must land even if the caller went away, or the session stays loading.
	applyCtx := context.WithoutCancel(ctx)
	state, err := s.sessions.Update(applyCtx, sessionID, func(state *models.FormState) error {
		if state.Generation != generation {
			return errStaleCompletion
		}
		now := s.now().UTC()
		if predictErr != nil {
			state.ApplyFailure(constants.GenericPredictionErrorMessage, now)
			return nil
		}
		state.ApplySuccess(result.Prediction, result.Probability, result.RiskFactors, now)
		return nil
	})

	if goerrors.Is(err, errStaleCompletion) {
		s.metrics.RecordStaleCompletion()
		span.SetAttributes(attribute.Bool("crp.stale", true))
		s.logger.Info(ctx, "Dropped stale prediction completion", logger.Fields{
			"session_id": sessionID,
			"generation": generation,
		})
		current, getErr := s.sessions.Get(applyCtx, sessionID)
		if getErr != nil {
			return nil, getErr
		}
		return &dto.SubmissionResult{
			SessionID:  sessionID,
			Generation: generation,
			Applied:    false,
			State:      dto.NewSessionResponse(current),
		}, nil
	}
	if err != nil {
		s.logger.Error(ctx, "Failed to apply prediction outcome", err, logger.Fields{"session_id": sessionID})
		return nil, err
	}

	s.metrics.RecordSubmission(outcome, latency)

	submission := &dto.SubmissionResult{
		SessionID:  sessionID,
		Generation: generation,
		Applied:    true,
		State:      dto.NewSessionResponse(state),
	}
	event := &models.AssessmentEvent{
		EventID:    uuid.NewString(),
		SessionID:  sessionID,
		Generation: generation,
		Outcome:    outcome,
		LatencyMS:  latency.Milliseconds(),
		OccurredAt: s.now().UTC(),
	}

	if predictErr != nil {
		submission.Code = errors.CodeOf(predictErr)
		submission.Message = constants.GenericPredictionErrorMessage
		submission.Err = predictErr
	} else {
		submission.Result = result
		s.metrics.RecordRiskLevel(result.View.Level.String())
		span.SetStatus(codes.Ok, "prediction applied")
		event.Prediction = &result.Prediction
		event.Probability = &result.Probability
		event.Level = result.View.Level
	}

	if err := s.publisher.Publish(applyCtx, event); err != nil {
		s.logger.Warn(ctx, "Failed to publish assessment event", logger.Fields{
			"event_id": event.EventID,
			"error":    err.Error(),
		})
	}

	return submission, nil
}

// Predict implements a stateless prediction
func (s *predictionAppServiceImpl) Predict(ctx context.Context, fields models.FormInput) (*dto.PredictionResult, error) {
	done := logger.StartOperation(ctx, s.logger, "predict")

	req := &models.PredictionRequest{Input: fields.Input()}
	start := s.now()
	resp, err := s.gateway.Predict(ctx, req)
	latency := s.now().Sub(start)
	if err != nil {
		done(logger.Fields{"code": string(errors.CodeOf(err))})
		return nil, err
	}
	if resp == nil || !resp.HasArrays() {
		done(logger.Fields{"code": string(constants.ErrCodeMalformedResponse)})
		return nil, errors.ErrMalformedResponse("Invalid response format from server")
	}

	result := dto.NewPredictionResult(resp, latency.Milliseconds())
	done(logger.Fields{"code": OutcomeSuccess, "level": result.View.Level.String()})
	return result, nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *models.AssessmentEvent) error { return nil }
func (noopPublisher) Close() error                                          { return nil }

//Personal.AI order the ending
