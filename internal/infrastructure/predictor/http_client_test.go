package predictor

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/crp/internal/config"
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.PredictorConfig{BackendURL: srv.URL + "/", PredictPath: constants.DefaultPredictPath}
	return NewClient(cfg, logger.NewNoopLogger()), srv
}

func request(values ...float64) *models.PredictionRequest {
	return &models.PredictionRequest{Input: models.Input(values)}
}

func TestPredict_SendsContract(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"input":[50000,35,0,null]}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction":[0],"probability":[0.05],"risk_factors":{"payment_ratio":0.2,"credit_utilization":0.5,"credit_limit":50000,"age":35}}`))
	})

	resp, err := client.Predict(context.Background(), request(50000, 35, 0, math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	p, prob := resp.First()
	assert.Equal(t, 0.0, p)
	assert.Equal(t, 0.05, prob)
	require.NotNil(t, resp.RiskFactors)
	assert.Equal(t, models.RiskFactors{PaymentRatio: 0.2, CreditUtilization: 0.5, CreditLimit: 50000, Age: 35}, *resp.RiskFactors)
}

func TestPredict_ForwardsRequestID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get(constants.RequestIDHeader))
		_, _ = w.Write([]byte(`{"prediction":[1],"probability":[0.9]}`))
	})

	ctx := context.WithValue(context.Background(), constants.ContextKeyRequestID, "req-42")
	resp, err := client.Predict(ctx, request(1, 2, 3, 4))
	require.NoError(t, err)
	assert.Nil(t, resp.RiskFactors)
}

func TestPredict_FailureTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   constants.ErrorCode
	}{
		{"server error status", http.StatusInternalServerError, `{"prediction":[1],"probability":[0.9]}`, constants.ErrCodeRequestFailed},
		{"bad request status", http.StatusBadRequest, `not json`, constants.ErrCodeRequestFailed},
		{"error field wins over arrays", http.StatusOK, `{"error":"model not loaded","prediction":[1],"probability":[0.9]}`, constants.ErrCodeServerReportedError},
		{"missing probability", http.StatusOK, `{"prediction":[1]}`, constants.ErrCodeMalformedResponse},
		{"empty arrays", http.StatusOK, `{"prediction":[],"probability":[]}`, constants.ErrCodeMalformedResponse},
		{"non numeric element", http.StatusOK, `{"prediction":["1"],"probability":[0.9]}`, constants.ErrCodeMalformedResponse},
		{"null element", http.StatusOK, `{"prediction":[null],"probability":[0.9]}`, constants.ErrCodeMalformedResponse},
		{"not an array", http.StatusOK, `{"prediction":1,"probability":0.9}`, constants.ErrCodeMalformedResponse},
		{"html body", http.StatusOK, `<html>oops</html>`, constants.ErrCodeMalformedResponse},
		{"empty object", http.StatusOK, `{}`, constants.ErrCodeMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			resp, err := client.Predict(context.Background(), request(1, 2, 3, 4))
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.code, errors.CodeOf(err))
			assert.True(t, errors.IsPredictionFailure(err))
		})
	}
}

func TestPredict_ResponseSizeLimit(t *testing.T) {
	answer := func(padding int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			head := `{"prediction":[1],"probability":[0.9],"pad":"`
			tail := `"}`
			pad := make([]byte, padding-len(head)-len(tail))
			for i := range pad {
				pad[i] = 'x'
			}
			_, _ = w.Write([]byte(head + string(pad) + tail))
		}
	}

	t.Run("body at the limit is decoded", func(t *testing.T) {
		client, _ := newTestClient(t, answer(maxResponseBytes))
		resp, err := client.Predict(context.Background(), request(1, 2, 3, 4))
		require.NoError(t, err)
		assert.Equal(t, []float64{0.9}, resp.Probability)
	})

	t.Run("larger body is rejected explicitly", func(t *testing.T) {
		client, _ := newTestClient(t, answer(maxResponseBytes+1))
		_, err := client.Predict(context.Background(), request(1, 2, 3, 4))
		require.Error(t, err)
		assert.Equal(t, constants.ErrCodeMalformedResponse, errors.CodeOf(err))
		assert.Contains(t, err.Error(), "exceeds")
	})
}

func TestPredict_ServerReportedMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"feature scaler missing"}`))
	})

	_, err := client.Predict(context.Background(), request(1, 2, 3, 4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature scaler missing")
}

func TestPredict_FalsyErrorFieldIsIgnored(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":null,"prediction":[1],"probability":[0.75],"risk_factors":"n/a"}`))
	})

	resp, err := client.Predict(context.Background(), request(1, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, resp.Prediction)
	assert.Nil(t, resp.RiskFactors)
}

func TestPredict_PartialRiskFactors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"prediction":   []int{0},
			"probability":  []float64{0.2},
			"risk_factors": map[string]interface{}{"age": 40, "credit_limit": "lots"},
		})
	})

	resp, err := client.Predict(context.Background(), request(1, 2, 3, 4))
	require.NoError(t, err)
	require.NotNil(t, resp.RiskFactors)
	assert.Equal(t, 40.0, resp.RiskFactors.Age)
	assert.Equal(t, 0.0, resp.RiskFactors.CreditLimit)
}

func TestPredict_NetworkFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := &config.PredictorConfig{BackendURL: "http://" + addr, PredictPath: constants.DefaultPredictPath}
	client := NewClient(cfg, logger.NewNoopLogger())

	_, err = client.Predict(context.Background(), request(1, 2, 3, 4))
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeNetworkFailure, errors.CodeOf(err))
}

func TestPredict_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	cfg := &config.PredictorConfig{BackendURL: srv.URL, PredictPath: constants.DefaultPredictPath, Timeout: 50 * time.Millisecond}
	client := NewClient(cfg, logger.NewNoopLogger())

	_, err := client.Predict(context.Background(), request(1, 2, 3, 4))
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeNetworkFailure, errors.CodeOf(err))
}

func TestPing(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, srv.URL+"/api/predict", client.Endpoint())
	assert.NoError(t, client.Ping(context.Background()))

	srv.Close()
	assert.Error(t, client.Ping(context.Background()))
}
