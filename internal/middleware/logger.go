package middleware

import (
	"time" // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Request IDs
	"github.com/sirupsen/logrus" // Structured logging
)

// RequestIDHeader carries the request ID in and out
const RequestIDHeader = "X-Request-ID"

// ContextRequestID is the gin context key holding the request ID
const ContextRequestID = "requestID"

// RequestLogger tags each request with an ID and logs it once it completes
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString() // Generate one when the client did not send a usable ID
		}
		c.Set(ContextRequestID, rid)
		c.Header(RequestIDHeader, rid)

		c.Next()

		status := c.Writer.Status()
		entry := logrus.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"ip":         c.ClientIP(),
		})
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// RequestID returns the ID assigned by RequestLogger
func RequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
