package routes

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisper-transcriber/internal/api/handlers"
	"whisper-transcriber/internal/api/middleware"
	"whisper-transcriber/internal/app/metrics"
	"whisper-transcriber/internal/app/pipeline"
	"whisper-transcriber/internal/app/tasks"
)

// ServiceContainer holds everything the handlers need.
type ServiceContainer struct {
	Pipeline  *pipeline.Pipeline
	Tasks     *tasks.Registry
	Runtime   handlers.Runtime
	Metrics   *metrics.Metrics
	Dashboard fs.FS
	Logger    *zap.Logger
}

// RegisterRoutes registers the upload, task, system and dashboard routes.
func RegisterRoutes(router gin.IRouter, container *ServiceContainer) {
	longRunning := middleware.NoWriteDeadline(container.Logger)

	uploadHandler := handlers.NewUploadHandler(container.Pipeline, container.Tasks, container.Logger)
	router.POST("/upload", longRunning, uploadHandler.Upload)

	taskHandler := handlers.NewTaskHandler(container.Tasks, container.Logger)
	router.GET("/progress/:id", longRunning, taskHandler.Progress)
	router.POST("/stop/:id", taskHandler.Stop)
	router.GET("/tasks/:id", taskHandler.Get)

	systemHandler := handlers.NewSystemHandler(container.Pipeline.Validator(), container.Runtime)
	router.GET("/health", systemHandler.Health)
	router.GET("/config", systemHandler.Config)
	router.GET("/metrics", gin.WrapH(container.Metrics.Handler()))

	if container.Dashboard != nil {
		router.StaticFS("/static", http.FS(container.Dashboard))
		router.GET("/", func(c *gin.Context) {
			c.FileFromFS("/", http.FS(container.Dashboard))
		})
	}
}
