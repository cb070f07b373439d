package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"food-ordering/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an id and logs it once it has been
// served. The request scoped logger is available through Logger.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		reqLog := log.WithRequestID(requestID)
		c.Set("requestID", requestID)
		c.Set("logger", reqLog)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		details := map[string]any{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if uid := GetUserID(c); uid != "" {
			details["user_id"] = uid
		}
		if len(c.Errors) > 0 {
			reqLog.Error("http_request", "request failed", details, c.Errors.Last())
			return
		}
		reqLog.Info("http_request", "request served", details)
	}
}

// Logger returns the request scoped logger, or a no-op one outside of
// RequestLogger.
func Logger(c *gin.Context) logger.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(logger.Logger); ok {
			return l
		}
	}
	return logger.Nop()
}

// CORS mirrors the permissive policy for browser front ends.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, "+RequestIDHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
