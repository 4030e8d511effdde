package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"whisper-transcriber/internal/app/api"
	"whisper-transcriber/internal/app/api/provider"
	"whisper-transcriber/internal/app/audio"
	"whisper-transcriber/internal/app/device"
	"whisper-transcriber/internal/app/logging"
	"whisper-transcriber/internal/app/media"
	"whisper-transcriber/internal/app/metrics"
	"whisper-transcriber/internal/app/pipeline"
	"whisper-transcriber/internal/app/storage"
	"whisper-transcriber/internal/app/tasks"
	"whisper-transcriber/internal/app/transcriber"
	"whisper-transcriber/internal/config"
)

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := logging.NewLogger(cfg.Log.Development, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideDetector(cfg *config.Config, logger *zap.Logger) *device.Detector {
	return device.NewDetector(cfg.Engine.Device, logger)
}

func provideEngine(cfg *config.Config, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	settings := cfg.Engine.Settings
	if settings.TempDir == "" {
		settings.TempDir = cfg.Upload.TempDir
	}
	engine, err := api.NewEngine(settings, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s engine: %w", settings.Type, err)
	}
	return engine, nil
}

func provideDecoder(cfg *config.Config, logger *zap.Logger) *audio.FFmpeg {
	return audio.NewFFmpeg(cfg.Media.FFmpegPath, cfg.Media.FFprobePath, cfg.Upload.TempDir, logger)
}

func provideArchive(ctx context.Context, cfg *config.Config) (storage.Archive, error) {
	return storage.New(ctx, cfg.Archive)
}

func provideValidator(cfg *config.Config) *media.Validator {
	return media.NewValidator(cfg.Upload.MaxBytes, cfg.Upload.Extensions, cfg.Upload.Languages)
}

func provideService(engine provider.TranscriptionProvider, decoder audio.Decoder, detector *device.Detector,
	cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *transcriber.Service {
	return transcriber.NewService(engine, decoder, detector, transcriber.Config{
		Model:    cfg.Engine.Model,
		Timeout:  cfg.Engine.Timeout,
		MaxQueue: cfg.Engine.MaxQueue,
	}, m, logger)
}

func providePipeline(validator *media.Validator, service pipeline.Transcriber, archive storage.Archive,
	m *metrics.Metrics, cfg *config.Config, logger *zap.Logger) *pipeline.Pipeline {
	return pipeline.New(validator, service, archive, m, cfg.Upload.TempDir, logger)
}

func provideTasks(cfg *config.Config) *tasks.Registry {
	return tasks.NewRegistry(cfg.Server.TaskRetention)
}
