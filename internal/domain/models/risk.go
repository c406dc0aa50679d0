package models

import "time"

// RiskLevel is one of the four display levels of a prediction.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelModerate RiskLevel = "Moderate"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelVeryHigh RiskLevel = "Very High"
)

// String returns the display label.
func (l RiskLevel) String() string {
	return string(l)
}

// Classification pairs a risk level with the colour it is shown in.
type Classification struct {
	Level RiskLevel `json:"level"`
	Color string    `json:"color"`
}

// Tone is the colour family of a result chip.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// Chip is one labelled badge on the result panel.
type Chip struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

// ResultView is everything the result panel shows for one prediction.
type ResultView struct {
	Headline      string         `json:"headline"`
	HeadlineColor string         `json:"headline_color"`
	Level         RiskLevel      `json:"level"`
	Outcome       string         `json:"outcome"`
	Chips         []Chip         `json:"chips"`
	RiskFactors   []Chip         `json:"risk_factors,omitempty"`
	Classified    Classification `json:"classification"`
}

// AssessmentEvent is published after a submission has been applied to a session.
// It carries no raw form input.
type AssessmentEvent struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id"`
	Generation  uint64    `json:"generation"`
	Outcome     string    `json:"outcome"`
	Prediction  *float64  `json:"prediction,omitempty"`
	Probability *float64  `json:"probability,omitempty"`
	Level       RiskLevel `json:"level,omitempty"`
	LatencyMS   int64     `json:"latency_ms"`
	OccurredAt  time.Time `json:"occurred_at"`
}
