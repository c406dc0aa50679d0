package models

import "time"

// Phase is the lifecycle position of a session's latest submission.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// FormState is the server-side state of one visitor's predictor form.
//
// Generation increases on every submission. A completion is applied only when
// the generation it started with is still current, so the latest submission
// always wins.
type FormState struct {
	SessionID    string       `json:"session_id"`
	Fields       FormInput    `json:"fields"`
	Phase        Phase        `json:"phase"`
	Generation   uint64       `json:"generation"`
	Prediction   *float64     `json:"prediction,omitempty"`
	Probability  *float64     `json:"probability,omitempty"`
	RiskFactors  *RiskFactors `json:"risk_factors,omitempty"`
	ErrorMessage string       `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewFormState returns an empty idle session.
func NewFormState(sessionID string, now time.Time) *FormState {
	return &FormState{
		SessionID: sessionID,
		Phase:     PhaseIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Loading reports whether a submission is in flight.
func (s *FormState) Loading() bool {
	return s.Phase == PhaseLoading
}

// HasResult reports whether both prediction and probability are set.
func (s *FormState) HasResult() bool {
	return s.Prediction != nil && s.Probability != nil
}

// BeginSubmission moves the state to loading, clears the previous outcome
// and returns the new generation.
func (s *FormState) BeginSubmission(now time.Time) uint64 {
	s.Generation++
	s.Phase = PhaseLoading
	s.ErrorMessage = ""
	s.Prediction = nil
	s.Probability = nil
	s.RiskFactors = nil
	s.UpdatedAt = now
	return s.Generation
}

// ApplySuccess stores a prediction in one step.
func (s *FormState) ApplySuccess(prediction, probability float64, factors *RiskFactors, now time.Time) {
	s.Phase = PhaseSuccess
	s.Prediction = &prediction
	s.Probability = &probability
	s.RiskFactors = factors
	s.ErrorMessage = ""
	s.UpdatedAt = now
}

// ApplyFailure records a failed submission with the user-facing message.
func (s *FormState) ApplyFailure(message string, now time.Time) {
	s.Phase = PhaseError
	s.Prediction = nil
	s.Probability = nil
	s.RiskFactors = nil
	s.ErrorMessage = message
	s.UpdatedAt = now
}

// Clone returns a deep copy.
func (s *FormState) Clone() *FormState {
	if s == nil {
		return nil
	}
	c := *s
	if s.Prediction != nil {
		v := *s.Prediction
		c.Prediction = &v
	}
	if s.Probability != nil {
		v := *s.Probability
		c.Probability = &v
	}
	if s.RiskFactors != nil {
		rf := *s.RiskFactors
		c.RiskFactors = &rf
	}
	return &c
}
