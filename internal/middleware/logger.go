package middleware

import (
	"time"

	"anoa.com/devsearch/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger logs one structured line per request and tags it with a request id.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		entry := logger.Log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"http_method": c.Request.Method,
			"uri":         c.Request.URL.Path,
			"status_code": status,
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})

		if len(c.Errors) > 0 {
			entry.WithField("error", c.Errors.String()).Error("request processing failed")
			return
		}

		switch {
		case status >= 500:
			entry.Error("request completed with server error")
		case status >= 400:
			entry.Warn("request completed with client error")
		default:
			entry.Info("request completed")
		}
	}
}
