package handlers

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/crp/internal/application/dto"
	"github.com/turtacn/crp/internal/config"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
	"github.com/turtacn/crp/pkg/utils"
)

// LoggingMiddleware logs incoming requests.
func LoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if id := c.GetString(string(constants.ContextKeySessionID)); id != "" {
			fields["session_id"] = id
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn(c.Request.Context(), "Request failed", fields)
			return
		}
		log.Info(c.Request.Context(), "Request processed", fields)
	}
}

// RecoveryMiddleware recovers from panics.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error(c.Request.Context(), "Panic recovered", goerrors.New("panic"), logger.Fields{"panic": fmt.Sprint(rec)})
				dto.SendError(c, errors.ErrInternal("internal server error"))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// RequestIDMiddleware propagates X-Request-ID, generating one when absent.
// 请求 ID 同时写入 gin 上下文和 request context，日志会自动带上它
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Header(constants.RequestIDHeader, requestID)
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SessionMiddleware resolves the visitor's session id.
//
// API callers may send X-Session-ID; browsers carry the session cookie. A
// missing or malformed id is replaced by a fresh UUID and the cookie is set.
func SessionMiddleware(cfg *config.SessionConfig) gin.HandlerFunc {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = constants.DefaultSessionCookieName
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}

	return func(c *gin.Context) {
		sessionID := c.GetHeader(constants.SessionHeader)
		if sessionID == "" {
			sessionID, _ = c.Cookie(cookieName)
		}
		if !utils.ValidateSessionID(sessionID) {
			sessionID = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, sessionID, int(ttl.Seconds()), "/", "", cfg.CookieSecure, true)
		c.Header(constants.SessionHeader, sessionID)

		c.Set(string(constants.ContextKeySessionID), sessionID)
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeySessionID, sessionID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SessionIDFrom returns the id resolved by SessionMiddleware.
func SessionIDFrom(c *gin.Context) string {
	return c.GetString(string(constants.ContextKeySessionID))
}

//Personal.AI order the ending
