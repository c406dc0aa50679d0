// Package dto provides data transfer objects for the application layer.
package dto

import (
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/internal/domain/service"
	"github.com/turtacn/crp/pkg/constants"
)

// FieldUpdateRequest is the body of PUT /api/v1/session/fields/:name.
type FieldUpdateRequest struct {
	Value string `json:"value"`
}

// FieldNameRequest validates the :name path parameter.
type FieldNameRequest struct {
	Name string `validate:"required,formfield"`
}

// ClassifyRequest is the body of POST /api/v1/classify.
type ClassifyRequest struct {
	Prediction  *float64 `json:"prediction" validate:"required"`
	Probability *float64 `json:"probability" validate:"required"`
}

// ClassifyResponse is a classification with its display label.
type ClassifyResponse struct {
	Level string `json:"level"`
	Color string `json:"color"`
	Label string `json:"label"`
}

// NewClassifyResponse wraps a classification.
func NewClassifyResponse(c models.Classification) *ClassifyResponse {
	return &ClassifyResponse{
		Level: c.Level.String(),
		Color: c.Color,
		Label: c.Level.String() + " Risk",
	}
}

// PredictionResult is a successful prediction with its display view.
type PredictionResult struct {
	Prediction  float64             `json:"prediction"`
	Probability float64             `json:"probability"`
	RiskFactors *models.RiskFactors `json:"risk_factors,omitempty"`
	View        models.ResultView   `json:"view"`
	LatencyMS   int64               `json:"latency_ms"`
}

// NewPredictionResult builds the result from a decoded response.
func NewPredictionResult(resp *models.PredictionResponse, latencyMS int64) *PredictionResult {
	prediction, probability := resp.First()
	return &PredictionResult{
		Prediction:  prediction,
		Probability: probability,
		RiskFactors: resp.RiskFactors,
		View:        service.Present(prediction, probability, resp.RiskFactors),
		LatencyMS:   latencyMS,
	}
}

// SubmissionResult reports what a submission did to its session.
//
// Applied is false when a newer submission started before this one finished;
// State then shows the newer submission. Code is set when the prediction
// failed, and Message then holds the generic user-facing text.
type SubmissionResult struct {
	SessionID  string              `json:"session_id"`
	Generation uint64              `json:"generation"`
	Applied    bool                `json:"applied"`
	Result     *PredictionResult   `json:"result,omitempty"`
	Code       constants.ErrorCode `json:"code,omitempty"`
	Message    string              `json:"message,omitempty"`
	State      *SessionResponse    `json:"state"`

	// Err is the underlying prediction failure.
	Err error `json:"-"`
}

// Failed reports whether the prediction failed.
func (r *SubmissionResult) Failed() bool {
	return r.Err != nil
}

// SessionResponse is a session snapshot with its result view.
type SessionResponse struct {
	SessionID   string              `json:"session_id"`
	Fields      models.FormInput    `json:"fields"`
	Phase       models.Phase        `json:"phase"`
	Loading     bool                `json:"loading"`
	Generation  uint64              `json:"generation"`
	Prediction  *float64            `json:"prediction,omitempty"`
	Probability *float64            `json:"probability,omitempty"`
	RiskFactors *models.RiskFactors `json:"risk_factors,omitempty"`
	Error       string              `json:"error,omitempty"`
	Result      *models.ResultView  `json:"result,omitempty"`
}

// NewSessionResponse converts a session for output.
func NewSessionResponse(state *models.FormState) *SessionResponse {
	if state == nil {
		return nil
	}
	return &SessionResponse{
		SessionID:   state.SessionID,
		Fields:      state.Fields,
		Phase:       state.Phase,
		Loading:     state.Loading(),
		Generation:  state.Generation,
		Prediction:  state.Prediction,
		Probability: state.Probability,
		RiskFactors: state.RiskFactors,
		Error:       state.ErrorMessage,
		Result:      service.PresentState(state),
	}
}
