package models

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/turtacn/crp/pkg/utils"
)

// Input is the ordered feature vector [creditLimit, age, billAmount, paymentAmount].
type Input []float64

// MarshalJSON writes numbers the way the browser's JSON.stringify does:
// non-finite values become null and -0 becomes 0.
func (in Input) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range in {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(utils.FormatNumber(v))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// PredictionRequest is the body of POST /api/predict.
type PredictionRequest struct {
	Input Input `json:"input"`
}

// RiskFactors are auxiliary diagnostics returned by the model service.
// They are displayed but never interpreted.
type RiskFactors struct {
	PaymentRatio      float64 `json:"payment_ratio"`
	CreditUtilization float64 `json:"credit_utilization"`
	CreditLimit       float64 `json:"credit_limit"`
	Age               float64 `json:"age"`
}

// PredictionResponse is the decoded body of a prediction answer.
type PredictionResponse struct {
	Prediction  []float64       `json:"prediction"`
	Probability []float64       `json:"probability"`
	RiskFactors *RiskFactors    `json:"risk_factors,omitempty"`
	Error       json.RawMessage `json:"error,omitempty"`
}

// First returns index 0 of the prediction and probability arrays.
// Callers must check HasArrays first.
func (r *PredictionResponse) First() (prediction, probability float64) {
	return r.Prediction[0], r.Probability[0]
}

// HasArrays reports whether both arrays are present with at least one element.
func (r *PredictionResponse) HasArrays() bool {
	return len(r.Prediction) > 0 && len(r.Probability) > 0
}

// ReportedError returns the message of a truthy error field.
// null, false, 0 and "" do not count as errors.
func (r *PredictionResponse) ReportedError() (string, bool) {
	raw := bytes.TrimSpace(r.Error)
	if len(raw) == 0 {
		return "", false
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw), true
	}

	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		if !val {
			return "", false
		}
	case float64:
		if val == 0 {
			return "", false
		}
	case string:
		if val == "" {
			return "", false
		}
		return val, true
	}
	return string(raw), true
}
