package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		entry := logger.WithFields(logrus.Fields{
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
		})
		if s := Session(c); s != nil {
			entry = entry.WithField("user_id", s.UserID)
		}

		switch {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case statusCode >= 500:
			entry.Error("Request completed with server error")
		case statusCode >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}
