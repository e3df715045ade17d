package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogging writes one structured line per completed request.
// Probe endpoints are skipped so scrape traffic does not drown the log.
func RequestLogging(logger *zap.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		if param.Path == "/health" || param.Path == "/metrics" {
			return ""
		}

		requestID := ""
		if param.Keys != nil {
			if id, ok := param.Keys[requestIDKey].(string); ok {
				requestID = id
			}
		}

		logger.Info("http request",
			zap.String("request_id", requestID),
			zap.String("method", param.Method),
			zap.String("path", param.Path),
			zap.Int("status", param.StatusCode),
			zap.Int64("latency_ms", param.Latency.Milliseconds()),
			zap.String("client_ip", param.ClientIP),
			zap.String("error", param.ErrorMessage),
		)

		return ""
	})
}
