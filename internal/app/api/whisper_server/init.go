package whisper_server

import (
	"go.uber.org/zap"

	"whisper-transcriber/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createWhisperServerProvider)
}

func createWhisperServerProvider(settings provider.Settings, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	headers := map[string]string{}
	if settings.APIKey != "" {
		headers["Authorization"] = "Bearer " + settings.APIKey
	}
	return NewWhisperServerProvider(WhisperServerConfig{
		BaseURL:       settings.BaseURL,
		Model:         settings.Model,
		Timeout:       settings.HTTPTimeout,
		CustomHeaders: headers,
	}, logger), nil
}
