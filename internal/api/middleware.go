package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/keving3ng/notion-gateway/internal/logger"
)

// CORSMiddleware validates the Origin header against the allow-list and
// emits matching response headers. An unrecognized origin is never echoed
// back; the response falls back to the first allowed origin, so the
// header is always present but reflection is impossible.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	// An empty allow-list means CORS is off: no headers, no preflight
	// short-circuit, rather than a panic on first request.
	if len(allowedOrigins) == 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := allowedOrigins[0]
		for _, candidate := range allowedOrigins {
			if candidate == origin {
				allowed = origin
				break
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", allowed)
		c.Writer.Header().Set("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware attaches a unique ID to each request, taken from
// X-Request-ID or generated.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()
	}
}

// RequestLoggerMiddleware logs one structured record per request.
func RequestLoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("HTTP request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		)
	}
}

// RecoveryMiddleware converts panics to a sanitized 500. Nothing from the
// panic value reaches the client.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered",
					logger.String("path", c.Request.URL.Path),
					logger.String("method", c.Request.Method),
					logger.String("panic", toString(err)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "An unexpected error occurred",
				})
			}
		}()

		c.Next()
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "unknown panic"
}
