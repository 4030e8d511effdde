package whisper_cpp

import (
	"go.uber.org/zap"

	"whisper-transcriber/internal/app/api/provider"
	"whisper-transcriber/internal/app/util/command"
)

func init() {
	// Register whisper_cpp provider with the factory
	provider.RegisterProvider(providerName, createWhisperCppProvider)
}

func createWhisperCppProvider(settings provider.Settings, logger *zap.Logger) (provider.TranscriptionProvider, error) {
	return NewLocalTranscriber(LocalProviderConfig{
		BinaryPath:   settings.BinaryPath,
		ModelsDir:    settings.ModelsDir,
		Model:        settings.Model,
		AutoDownload: settings.AutoDownload,
		Threads:      settings.Threads,
		Prompt:       settings.Prompt,
		TempDir:      settings.TempDir,
	}, command.ExecRunner{}, logger), nil
}
