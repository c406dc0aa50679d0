package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/crp/internal/domain/service"
	"github.com/turtacn/crp/pkg/logger"
)

const healthCheckTimeout = 3 * time.Second

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checkers map[string]service.HealthChecker
	log      logger.Logger
}

// NewHealthHandler creates a new HealthHandler.
// checkers maps a dependency name (session_store, predictor, ...) to its health check.
func NewHealthHandler(checkers map[string]service.HealthChecker, log logger.Logger) *HealthHandler {
	if checkers == nil {
		checkers = map[string]service.HealthChecker{}
	}
	return &HealthHandler{
		checkers: checkers,
		log:      log.WithComponent("health"),
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Checks the health of the service and its dependencies.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	checks, details := h.performChecks(c.Request.Context())

	httpStatus := http.StatusOK
	for name, checkStatus := range checks {
		if checkStatus != "ok" {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			h.log.Warn(c.Request.Context(), "Dependency check failed", logger.Fields{"dependency": name, "status": checkStatus})
		}
	}

	body := gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	c.JSON(httpStatus, body)
}

// ReadinessCheck godoc
// @Summary      Readiness Check
// @Description  Checks if the service is ready to accept traffic.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.HealthCheck(c) // readiness is the same as healthiness
}

// LivenessCheck only reports that the process serves requests.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// performChecks runs every checker concurrently. Checkers that implement
// DetailedHealthChecker also contribute to details.
func (h *HealthHandler) performChecks(ctx context.Context) (map[string]string, map[string]map[string]interface{}) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.checkers))
	details := make(map[string]map[string]interface{})
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for name, checker := range h.checkers {
		name, checker := name, checker
		g.Go(func() error {
			var (
				info map[string]interface{}
				err  error
			)
			if detailed, ok := checker.(service.DetailedHealthChecker); ok {
				info, err = detailed.HealthCheck(gctx)
			} else {
				err = checker.Ping(gctx)
			}

			status := "ok"
			if err != nil {
				status = "error: " + err.Error()
			}
			mu.Lock()
			checks[name] = status
			if len(info) > 0 {
				details[name] = info
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return checks, details
}

//Personal.AI order the ending
