//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"whisper-transcriber/internal/app/audio"
	"whisper-transcriber/internal/app/metrics"
	"whisper-transcriber/internal/app/pipeline"
	"whisper-transcriber/internal/app/transcriber"
	"whisper-transcriber/internal/config"
)

var transcriptionSet = wire.NewSet(
	provideDetector,
	provideEngine,
	provideDecoder,
	wire.Bind(new(audio.Decoder), new(*audio.FFmpeg)),
	provideService,
	wire.Bind(new(pipeline.Transcriber), new(*transcriber.Service)),
)

var deliverySet = wire.NewSet(
	provideValidator,
	provideArchive,
	providePipeline,
	provideTasks,
)

var metricsSet = wire.NewSet(metrics.NewRegistry, metrics.New)

// InitializeApp builds every shared component from a loaded configuration.
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		provideLogger,
		metricsSet,
		transcriptionSet,
		deliverySet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
