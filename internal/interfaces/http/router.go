package http

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/crp/internal/application/dto"
	"github.com/turtacn/crp/internal/config"
	"github.com/turtacn/crp/internal/infrastructure/monitoring"
	"github.com/turtacn/crp/internal/interfaces/http/handlers"
	"github.com/turtacn/crp/internal/interfaces/http/middleware"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
	"github.com/turtacn/crp/web"
)

// RouterDependencies 路由器依赖
type RouterDependencies struct {
	Config           *config.Config
	Logger           logger.Logger
	HealthHandler    *handlers.HealthHandler
	PredictorHandler *handlers.PredictorHandler
	Metrics          *monitoring.Metrics
	Gatherer         prometheus.Gatherer
	Tracing          *monitoring.TracingManager
}

// Router HTTP 路由器
type Router struct {
	engine           *gin.Engine
	config           *config.Config
	logger           logger.Logger
	healthHandler    *handlers.HealthHandler
	predictorHandler *handlers.PredictorHandler
	metrics          *monitoring.Metrics
	gatherer         prometheus.Gatherer
	tracing          *monitoring.TracingManager
	limiter          *middleware.IPRateLimiter
	server           *http.Server
}

// NewRouter 创建路由器并注册全部路由
func NewRouter(deps RouterDependencies) (*Router, error) {
	// 设置 Gin 模式
	if deps.Config.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)

	r := &Router{
		engine:           engine,
		config:           deps.Config,
		logger:           deps.Logger.WithComponent("http"),
		healthHandler:    deps.HealthHandler,
		predictorHandler: deps.PredictorHandler,
		metrics:          deps.Metrics,
		gatherer:         deps.Gatherer,
		tracing:          deps.Tracing,
		limiter:          middleware.NewIPRateLimiter(deps.Config.Server.RateLimitRPS, deps.Config.Server.RateLimitBurst),
	}
	if r.tracing == nil {
		if r.tracing, err = monitoring.NewTracingManager(&config.TracingConfig{}, deps.Logger); err != nil {
			return nil, err
		}
	}
	if r.gatherer == nil {
		r.gatherer = prometheus.DefaultGatherer
	}
	r.setupRoutes()

	// server 在此创建，Stop 可能早于 Start 的 goroutine 运行
	r.server = &http.Server{
		Addr:           deps.Config.Server.Address(),
		Handler:        engine,
		ReadTimeout:    deps.Config.Server.ReadTimeout,
		WriteTimeout:   deps.Config.Server.WriteTimeout,
		IdleTimeout:    deps.Config.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return r, nil
}

// Engine exposes the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupRoutes() {
	// 全局中间件
	r.engine.Use(handlers.RecoveryMiddleware(r.logger))
	r.engine.Use(handlers.RequestIDMiddleware())
	if r.metrics != nil {
		r.engine.Use(middleware.ObservabilityMiddleware(r.tracing, r.metrics))
	}
	r.engine.Use(handlers.LoggingMiddleware(r.logger))

	// CORS 配置
	if len(r.config.Server.AllowedOrigins) > 0 {
		r.engine.Use(cors.New(corsConfig(r.config.Server.AllowedOrigins)))
	}

	// 健康检查路由
	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/live", r.healthHandler.LivenessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	// Pprof 性能分析（仅在非生产环境）
	if !r.config.Server.IsProduction() {
		pprof.Register(r.engine)
	}

	rateLimit := middleware.RateLimitMiddleware(r.limiter, r.metrics, r.logger)
	session := handlers.SessionMiddleware(&r.config.Session)

	// 页面路由
	r.engine.GET("/", session, r.predictorHandler.Index)
	r.engine.POST("/predict", session, rateLimit, r.predictorHandler.SubmitForm)

	// API 路由组
	v1 := r.engine.Group("/api/v1")
	{
		v1.POST("/classify", r.predictorHandler.Classify)

		sessions := v1.Group("/session", session)
		{
			sessions.GET("", r.predictorHandler.GetSession)
			sessions.PUT("/fields/:name", r.predictorHandler.UpdateField)
		}

		v1.POST("/predictions", session, rateLimit, r.predictorHandler.CreatePrediction)
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		dto.SendError(c, errors.NewError(
			constants.ErrCodeInvalidRequest,
			http.StatusNotFound,
			"The requested resource was not found",
			"not found",
		))
	})
}

// corsConfig 构造 CORS 配置
// 浏览器拒绝带凭证的通配来源，"*" 时关闭 AllowCredentials
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", constants.RequestIDHeader, constants.SessionHeader},
		ExposeHeaders:    []string{constants.RequestIDHeader, constants.SessionHeader, "X-RateLimit-Limit", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭
// Stop 之后调用会立即返回 nil
func (r *Router) Start() error {
	r.logger.Info(context.Background(), "Starting HTTP server", logger.Fields{"address": r.server.Addr})

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

//Personal.AI order the ending
