package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"whisper-transcriber/internal/app/api/provider"
	"whisper-transcriber/internal/app/audio"
	"whisper-transcriber/internal/app/metrics"
	"whisper-transcriber/internal/app/pipeline"
	"whisper-transcriber/internal/app/tasks"
	"whisper-transcriber/internal/app/transcriber"
	"whisper-transcriber/internal/config"
)

// App holds the long-lived components shared by the CLI and the HTTP server.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Engine   provider.TranscriptionProvider
	Decoder  *audio.FFmpeg
	Service  *transcriber.Service
	Pipeline *pipeline.Pipeline
	Tasks    *tasks.Registry
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}
