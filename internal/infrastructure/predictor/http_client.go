// Package predictor implements the prediction gateway over HTTP.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/turtacn/crp/internal/config"
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/internal/domain/service"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Client calls POST {backend}/api/predict.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

var (
	_ service.PredictionGateway = (*Client)(nil)
	_ service.HealthChecker     = (*Client)(nil)
)

// NewClient creates a gateway for the configured backend. A zero timeout
// leaves requests bounded only by the caller's context.
func NewClient(cfg *config.PredictorConfig, log logger.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint(),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		logger: log.WithComponent("predictor_client"),
	}
}

// Endpoint returns the full prediction URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Predict sends one prediction request.
//
// The status is checked before the body is read, and an error field in the
// body is checked before the prediction arrays.
func (c *Client) Predict(ctx context.Context, req *models.PredictionRequest) (*models.PredictionResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.ErrInternal("failed to encode prediction request").WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.ErrInternal("failed to build prediction request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", constants.ContentTypeJSON)
	if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && requestID != "" {
		httpReq.Header.Set(constants.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn(ctx, "Prediction request failed", logger.Fields{
			"endpoint": c.endpoint,
			"error":    err.Error(),
		})
		return nil, errors.ErrNetworkFailure(err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "Prediction response received", logger.Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, errors.ErrRequestFailed(resp.StatusCode)
	}

	// one extra byte tells a body at the limit from a longer one
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, errors.ErrNetworkFailure(err)
	}
	if len(body) > maxResponseBytes {
		c.logger.Warn(ctx, "Prediction response too large", logger.Fields{"limit_bytes": maxResponseBytes})
		return nil, errors.ErrMalformedResponse(fmt.Sprintf("response body exceeds %d bytes", maxResponseBytes))
	}

	return decodeResponse(body)
}

// Ping dials the backend host to check it is reachable.
func (c *Client) Ping(ctx context.Context) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return err
	}
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return fmt.Errorf("prediction backend unreachable: %w", err)
	}
	return conn.Close()
}

type rawResponse struct {
	Prediction  json.RawMessage `json:"prediction"`
	Probability json.RawMessage `json:"probability"`
	RiskFactors json.RawMessage `json:"risk_factors"`
	Error       json.RawMessage `json:"error"`
}

func decodeResponse(body []byte) (*models.PredictionResponse, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.ErrMalformedResponse("response body is not a JSON object").WithCause(err)
	}

	out := &models.PredictionResponse{Error: raw.Error}
	if msg, reported := out.ReportedError(); reported {
		return nil, errors.ErrServerReported(msg)
	}

	var err error
	if out.Prediction, err = decodeNumbers(raw.Prediction); err != nil {
		return nil, errors.ErrMalformedResponse("invalid prediction array").WithCause(err)
	}
	if out.Probability, err = decodeNumbers(raw.Probability); err != nil {
		return nil, errors.ErrMalformedResponse("invalid probability array").WithCause(err)
	}
	if !out.HasArrays() {
		return nil, errors.ErrMalformedResponse("Invalid response format from server")
	}

	out.RiskFactors = decodeRiskFactors(raw.RiskFactors)
	return out, nil
}

// decodeNumbers reads a JSON array whose elements must all be numbers.
// A missing or null value decodes to nil.
func decodeNumbers(raw json.RawMessage) ([]float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(items))
	for i, item := range items {
		n, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, not a number", i, item)
		}
		out = append(out, n)
	}
	return out, nil
}

// decodeRiskFactors keeps whatever numeric factors are present. Anything
// that is not an object is treated as absent.
func decodeRiskFactors(raw json.RawMessage) *models.RiskFactors {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil
	}
	num := func(key string) float64 {
		if v, ok := fields[key].(float64); ok {
			return v
		}
		return 0
	}
	return &models.RiskFactors{
		PaymentRatio:      num("payment_ratio"),
		CreditUtilization: num("credit_utilization"),
		CreditLimit:       num("credit_limit"),
		Age:               num("age"),
	}
}
