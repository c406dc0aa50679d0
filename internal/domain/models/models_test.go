package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/crp/pkg/constants"
)

func TestFormInput_Input(t *testing.T) {
	f := FormInput{CreditLimit: "50000", Age: "35", BillAmount: "", PaymentAmount: "abc"}

	in := f.Input()
	require.Len(t, in, 4)
	assert.Equal(t, 50000.0, in[0])
	assert.Equal(t, 35.0, in[1])
	assert.Equal(t, 0.0, in[2])
	assert.True(t, math.IsNaN(in[3]))

	body, err := json.Marshal(PredictionRequest{Input: in})
	require.NoError(t, err)
	assert.JSONEq(t, `{"input":[50000,35,0,null]}`, string(body))
}

func TestFormInput_SetGet(t *testing.T) {
	var f FormInput
	for i, field := range constants.FormFields {
		require.NoError(t, f.Set(field, string(rune('1'+i))))
	}
	assert.Equal(t, FormInput{CreditLimit: "1", Age: "2", BillAmount: "3", PaymentAmount: "4"}, f)
	assert.Equal(t, "3", f.Get(constants.FieldBillAmount))

	assert.Error(t, f.Set("income", "5"))
	assert.Equal(t, "", f.Get("income"))
}

func TestInput_MarshalNonFinite(t *testing.T) {
	body, err := json.Marshal(Input{math.Inf(1), 1.5, math.Inf(-1), -2})
	require.NoError(t, err)
	assert.Equal(t, `[null,1.5,null,-2]`, string(body))
}

func TestInput_MarshalNegativeZero(t *testing.T) {
	body, err := json.Marshal(Input{math.Copysign(0, -1), 0, -0.5, 1e21, 1234567})
	require.NoError(t, err)
	assert.Equal(t, `[0,0,-0.5,1e+21,1234567]`, string(body))
}

func TestPredictionResponse_ReportedError(t *testing.T) {
	tests := []struct {
		body    string
		message string
		isError bool
	}{
		{`{"prediction":[0],"probability":[0.1]}`, "", false},
		{`{"error":null}`, "", false},
		{`{"error":false}`, "", false},
		{`{"error":0}`, "", false},
		{`{"error":""}`, "", false},
		{`{"error":"model not loaded"}`, "model not loaded", true},
		{`{"error":true}`, "true", true},
		{`{"error":{"detail":"x"}}`, `{"detail":"x"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var resp PredictionResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))
			msg, ok := resp.ReportedError()
			assert.Equal(t, tt.isError, ok)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestPredictionResponse_Arrays(t *testing.T) {
	resp := PredictionResponse{Prediction: []float64{1, 0}, Probability: []float64{0.9, 0.2}}
	require.True(t, resp.HasArrays())
	p, prob := resp.First()
	assert.Equal(t, 1.0, p)
	assert.Equal(t, 0.9, prob)

	assert.False(t, (&PredictionResponse{Prediction: []float64{1}}).HasArrays())
	assert.False(t, (&PredictionResponse{Prediction: []float64{}, Probability: []float64{0.1}}).HasArrays())
}

func TestFormState_Lifecycle(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewFormState("abc", t0)
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.False(t, s.Loading())
	assert.False(t, s.HasResult())

	gen := s.BeginSubmission(t0.Add(time.Second))
	assert.Equal(t, uint64(1), gen)
	assert.True(t, s.Loading())

	s.ApplySuccess(0, 0.05, &RiskFactors{Age: 35}, t0.Add(2*time.Second))
	assert.Equal(t, PhaseSuccess, s.Phase)
	assert.True(t, s.HasResult())
	assert.Empty(t, s.ErrorMessage)

	gen = s.BeginSubmission(t0.Add(3 * time.Second))
	assert.Equal(t, uint64(2), gen)
	assert.False(t, s.HasResult())
	assert.Nil(t, s.RiskFactors)

	s.ApplyFailure(constants.GenericPredictionErrorMessage, t0.Add(4*time.Second))
	assert.Equal(t, PhaseError, s.Phase)
	assert.False(t, s.HasResult())
	assert.Equal(t, constants.GenericPredictionErrorMessage, s.ErrorMessage)
	assert.Equal(t, t0, s.CreatedAt)
	assert.Equal(t, t0.Add(4*time.Second), s.UpdatedAt)
}

func TestFormState_Clone(t *testing.T) {
	s := NewFormState("abc", time.Now())
	s.ApplySuccess(1, 0.8, &RiskFactors{Age: 40}, time.Now())

	c := s.Clone()
	*c.Probability = 0.1
	c.RiskFactors.Age = 1
	c.Fields.Age = "99"

	assert.Equal(t, 0.8, *s.Probability)
	assert.Equal(t, 40.0, s.RiskFactors.Age)
	assert.Equal(t, "", s.Fields.Age)
	assert.Nil(t, (*FormState)(nil).Clone())
}
