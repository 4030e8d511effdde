package api

import (
	"go.uber.org/zap"

	"whisper-transcriber/internal/app/api/provider"

	// engines register themselves with the provider registry
	_ "whisper-transcriber/internal/app/api/openai/whisper"
	_ "whisper-transcriber/internal/app/api/whisper_cpp"
	_ "whisper-transcriber/internal/app/api/whisper_server"
)

// NewEngine builds the engine selected by settings.Type.
func NewEngine(settings provider.Settings, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return provider.New(settings, logger)
}

// Engines lists the engine types that can be configured.
func Engines() []string {
	return provider.ListRegisteredProviders()
}
