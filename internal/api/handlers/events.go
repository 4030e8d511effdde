package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"whisper-transcriber/internal/api/dto"
	"whisper-transcriber/internal/app/progress"
)

func startEventStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()
}

// writeEvent sends one event named after its phase. Write errors mean the
// client left; callers keep draining regardless.
func writeEvent(c *gin.Context, ev progress.Event) {
	c.SSEvent(string(ev.Phase), dto.NewEventResponse(ev))
	c.Writer.Flush()
}
