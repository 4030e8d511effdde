package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"whisper-transcriber/internal/api/dto"
	"whisper-transcriber/internal/app/device"
	"whisper-transcriber/internal/app/media"
)

// Runtime describes the engine a server is bound to.
type Runtime interface {
	Device() device.Device
	Model() string
	Engine() string
}

// SystemHandler serves health and configuration.
type SystemHandler struct {
	validator *media.Validator
	runtime   Runtime
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(validator *media.Validator, runtime Runtime) *SystemHandler {
	return &SystemHandler{validator: validator, runtime: runtime}
}

// Health handles GET /health
//
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy", Timestamp: time.Now().Unix()})
}

// Config handles GET /config
//
// @Summary Accepted inputs and engine
// @Tags system
// @Produce json
// @Success 200 {object} dto.ConfigResponse
// @Router /config [get]
func (h *SystemHandler) Config(c *gin.Context) {
	dev := h.runtime.Device()
	c.JSON(http.StatusOK, dto.ConfigResponse{
		Languages:  h.validator.Languages(),
		Extensions: h.validator.Extensions(),
		MaxBytes:   h.validator.MaxBytes(),
		Device:     dev.String(),
		DeviceName: dev.Name,
		Engine:     h.runtime.Engine(),
		Model:      h.runtime.Model(),
	})
}
