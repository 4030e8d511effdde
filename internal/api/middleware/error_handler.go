package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisper-transcriber/internal/api/errors"
)

// ErrorHandler recovers panics and answers with a generic internal error.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic while serving request",
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.String("recovered", fmt.Sprint(recovered)),
			zap.Stack("stack"),
		)

		apiErr := errors.NewInternalError("internal error")
		apiErr.RequestID = c.GetString(RequestIDKey)
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes err as a JSON error body and aborts the chain. The
// full error is attached to the context for the request log; the body only
// carries the user-facing message.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	apiErr := errors.FromError(err)
	body := *apiErr
	body.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(body.HTTPStatus(), &body)
}
