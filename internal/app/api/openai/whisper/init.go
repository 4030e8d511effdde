package whisper

import (
	"go.uber.org/zap"

	"whisper-transcriber/internal/app/api/provider"
)

func init() {
	// Register openai provider with the factory
	provider.RegisterProvider(providerName, createOpenAIProvider)
}

func createOpenAIProvider(settings provider.Settings, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	client, apiKey := NewClient(settings.APIKey, settings.BaseURL)
	return NewRemoteTranscriber(client, apiKey, settings.Model, settings.Prompt, logger), nil
}
