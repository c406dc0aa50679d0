package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appService "github.com/turtacn/crp/internal/application/service"
	"github.com/turtacn/crp/internal/config"
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/internal/domain/service"
	"github.com/turtacn/crp/internal/infrastructure/monitoring"
	"github.com/turtacn/crp/internal/infrastructure/persistence/memory"
	"github.com/turtacn/crp/internal/interfaces/http/handlers"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/logger"
)

type fixedGateway struct{}

func (fixedGateway) Predict(context.Context, *models.PredictionRequest) (*models.PredictionResponse, error) {
	return &models.PredictionResponse{Prediction: []float64{0}, Probability: []float64{0.05}}, nil
}

func newTestRouter(t *testing.T, mutate func(*config.Config)) (*Router, *prometheus.Registry) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			Environment:    "production",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Session: config.SessionConfig{Backend: constants.SessionBackendMemory, TTL: time.Minute},
	}
	if mutate != nil {
		mutate(cfg)
	}

	log := logger.NewNoopLogger()
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	store := memory.NewSessionStore(cfg.Session.TTL, log)
	app := appService.NewPredictionAppService(store, fixedGateway{}, log, appService.WithMetrics(metrics))

	r, err := NewRouter(RouterDependencies{
		Config:           cfg,
		Logger:           log,
		HealthHandler:    handlers.NewHealthHandler(map[string]service.HealthChecker{"session_store": store}, log),
		PredictorHandler: handlers.NewPredictorHandler(app, log),
		Metrics:          metrics,
		Gatherer:         reg,
	})
	require.NoError(t, err)
	return r, reg
}

func do(r *Router, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.Engine().ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/live", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/session", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/classify", `{"prediction":1,"probability":0.9}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/nope", "").Code)

	// production hides pprof
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/debug/pprof/", "").Code)
}

func TestRouter_MetricsExposeSubmissions(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/v1/predictions", `{"creditLimit":"1","age":"2","billAmount":"3","paymentAmount":"4"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(constants.SessionHeader))

	w = do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `crp_prediction_submissions_total{outcome="success"} 1`)
	assert.Contains(t, body, `crp_risk_level_total{level="Low"} 1`)
	assert.Contains(t, body, "crp_http_requests_total")
}

func TestRouter_RateLimitsSubmissions(t *testing.T) {
	r, _ := newTestRouter(t, func(cfg *config.Config) {
		cfg.Server.RateLimitRPS = 0.001
		cfg.Server.RateLimitBurst = 1
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/predictions", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/v1/predictions", "").Code)
	// reads are not limited
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/session", "").Code)
}

func TestRouter_PprofOutsideProduction(t *testing.T) {
	r, _ := newTestRouter(t, func(cfg *config.Config) {
		cfg.Server.Environment = "development"
	})
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/debug/pprof/", "").Code)
}

func TestRouter_StopWithoutStart(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	assert.NoError(t, r.Stop(context.Background()))
}

func TestRouter_StopBeforeStartPreventsServing(t *testing.T) {
	r, _ := newTestRouter(t, func(cfg *config.Config) {
		cfg.Server.Port = 0
	})
	require.NoError(t, r.Stop(context.Background()))

	done := make(chan error, 1)
	go func() { done <- r.Start() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start kept serving after Stop")
	}
}

func TestCorsConfig(t *testing.T) {
	wildcard := corsConfig([]string{"*"})
	assert.True(t, wildcard.AllowAllOrigins)
	assert.False(t, wildcard.AllowCredentials)
	assert.Empty(t, wildcard.AllowOrigins)
	assert.NoError(t, wildcard.Validate())

	listed := corsConfig([]string{"http://localhost:3000"})
	assert.False(t, listed.AllowAllOrigins)
	assert.True(t, listed.AllowCredentials)
	assert.Equal(t, []string{"http://localhost:3000"}, listed.AllowOrigins)
	assert.NoError(t, listed.Validate())
}

func TestRouter_CorsPreflight(t *testing.T) {
	preflight := func(r *Router, origin string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodOptions, "/api/v1/predictions", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		r.Engine().ServeHTTP(w, req)
		return w
	}

	t.Run("listed origin gets credentials", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)
		w := preflight(r, "http://localhost:3000")
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard origin drops credentials", func(t *testing.T) {
		r, _ := newTestRouter(t, func(cfg *config.Config) {
			cfg.Server.AllowedOrigins = []string{"*"}
		})
		w := preflight(r, "http://example.com")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}
