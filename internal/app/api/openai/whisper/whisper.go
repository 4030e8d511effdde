package whisper

import (
	"context"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"whisper-transcriber/internal/app/api/provider"
	"whisper-transcriber/internal/app/model"
)

const providerName = "openai"

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	apiKey string
	model  string
	prompt string
	logger *zap.Logger
}

// NewClient creates an OpenAI client; an empty apiKey falls back to OPENAI_API_KEY.
func NewClient(apiKey, baseURL string) (*openai.Client, string) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(clientConfig), apiKey
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, apiKey, modelName, prompt string, logger *zap.Logger) *RemoteTranscriber {
	// local size names (base, large-v3) mean nothing to the API
	if !strings.Contains(modelName, "whisper") && !strings.Contains(modelName, "transcribe") {
		modelName = openai.Whisper1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteTranscriber{client: client, apiKey: apiKey, model: modelName, prompt: prompt, logger: logger}
}

func (rt *RemoteTranscriber) Name() string {
	return providerName
}

// Load only checks that credentials are present; the model lives remotely.
func (rt *RemoteTranscriber) Load(ctx context.Context) error {
	if rt.apiKey == "" {
		return &provider.TranscriptionError{
			Code:     "missing_api_key",
			Message:  "OpenAI API key not configured (engine.api_key or OPENAI_API_KEY)",
			Provider: providerName,
		}
	}
	rt.logger.Info("openai engine ready", zap.String("model", rt.model))
	return nil
}

// Transcribe uses the OpenAI API for remote transcription.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	req := openai.AudioRequest{
		Model:    rt.model,
		FilePath: request.AudioPath,
		Prompt:   rt.prompt,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if !model.IsAuto(request.Language) {
		req.Language = request.Language
	}

	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, &provider.TranscriptionError{
			Code:     "api_error",
			Message:  "createTranscription failed",
			Provider: providerName,
			Cause:    err,
		}
	}

	language := model.LanguageCode(resp.Language)
	if req.Language != "" {
		language = req.Language
	}
	return &provider.TranscriptionResponse{
		Text:     strings.TrimSpace(resp.Text),
		Language: language,
	}, nil
}
