package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "ramble/internal/api/errors"
)

// ErrorBody is the shape every failed request answers with. The CLI
// keys off status and error; text is always present so result parsing
// stays uniform between success and failure.
type ErrorBody struct {
	Text      string `json:"text"`
	Status    string `json:"status"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// RenderError writes err in the wire error shape and aborts the
// request. The message is recorded on the gin context so the request
// log line carries it.
func RenderError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := apierrors.FromDomain(err)
	if apiErr.RequestID == "" {
		apiErr.RequestID = GetRequestID(c)
	}

	_ = c.Error(apiErr)

	c.AbortWithStatusJSON(apiErr.HTTPStatus(), ErrorBody{
		Status:    "error",
		Error:     apiErr.Message,
		RequestID: apiErr.RequestID,
	})
}

// Recovery converts handler panics into the standard error response
// instead of a bare 500.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := GetRequestID(c)

		if err, ok := recovered.(error); ok {
			logger.Error("panic in handler",
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
			)
		} else {
			logger.Error("panic in handler",
				zap.Any("recovered", recovered),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
			)
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{
			Status:    "error",
			Error:     "Internal server error",
			RequestID: requestID,
		})
	})
}
