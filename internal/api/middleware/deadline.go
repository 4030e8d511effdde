package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoWriteDeadline lifts the server write timeout for routes whose response
// lasts as long as a transcription: sync uploads and event streams. The
// engine timeout bounds those instead.
func NoWriteDeadline(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		rc := http.NewResponseController(c.Writer)
		if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			logger.Debug("could not clear write deadline", zap.Error(err))
		}
		c.Next()
	}
}
