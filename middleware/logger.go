package middleware

import (
	"time"

	"usuarios-api/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request scoped logger to the request context and
// logs one line per completed request.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)

		l := base.With(
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("url", c.Request.URL.Path),
			zap.String("remote_ip", c.ClientIP()),
		)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), l))

		start := time.Now()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()

		fields := []zap.Field{zap.Int("status", status), zap.Int64("duration_ms", dur.Milliseconds())}
		switch {
		case status >= 500 || len(c.Errors) > 0:
			l.Error("request completed", append(fields, zap.String("error", c.Errors.String()))...)
		case status >= 400:
			l.Warn("request completed", fields...)
		default:
			l.Info("request completed", append(fields, zap.Int("bytes", c.Writer.Size()))...)
		}
	}
}
