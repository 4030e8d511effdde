package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"whisper-transcriber/internal/app/api/provider"
	"whisper-transcriber/internal/app/model"
)

const providerName = "whisper_server"

// WhisperServerProvider implements transcription via HTTP to a whisper-server instance
type WhisperServerProvider struct {
	config WhisperServerConfig
	client *http.Client
	logger *zap.Logger
}

// WhisperServerConfig represents configuration for whisper-server HTTP API
type WhisperServerConfig struct {
	BaseURL       string        // e.g. http://127.0.0.1:8080
	InferencePath string        // default /inference
	LoadPath      string        // default /load
	Model         string        // model path on the server, loaded via LoadPath when set
	Timeout       time.Duration // per HTTP request
	Temperature   float64
	CustomHeaders map[string]string
}

// WhisperServerResponse represents the JSON response from whisper-server
type WhisperServerResponse struct {
	Text             string  `json:"text,omitempty"`
	Language         string  `json:"language,omitempty"`
	DetectedLanguage string  `json:"detected_language,omitempty"`
	Duration         float64 `json:"duration,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// NewWhisperServerProvider creates a new whisper-server HTTP provider
func NewWhisperServerProvider(config WhisperServerConfig, logger *zap.Logger) *WhisperServerProvider {
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.LoadPath == "" {
		config.LoadPath = "/load"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WhisperServerProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

func (wsp *WhisperServerProvider) Name() string {
	return providerName
}

// Load asks the server to switch to the configured model, or just checks
// that it answers when no model is configured.
func (wsp *WhisperServerProvider) Load(ctx context.Context) error {
	if wsp.config.BaseURL == "" {
		return &provider.TranscriptionError{Code: "invalid_config", Message: "base_url is required", Provider: providerName}
	}

	var req *http.Request
	var err error
	if wsp.config.Model == "" {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, wsp.config.BaseURL, nil)
	} else {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		if err := writer.WriteField("model", wsp.config.Model); err != nil {
			return err
		}
		writer.Close()
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, wsp.config.BaseURL+wsp.config.LoadPath, body)
		if req != nil {
			req.Header.Set("Content-Type", writer.FormDataContentType())
		}
	}
	if err != nil {
		return &provider.TranscriptionError{Code: "request_creation_failed", Message: "failed to create HTTP request", Provider: providerName, Cause: err}
	}
	wsp.setHeaders(req)

	resp, err := wsp.client.Do(req)
	if err != nil {
		return &provider.TranscriptionError{Code: "request_failed", Message: "server unreachable", Provider: providerName, Cause: err}
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return &provider.TranscriptionError{
			Code:     "load_failed",
			Message:  fmt.Sprintf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))),
			Provider: providerName,
		}
	}

	wsp.logger.Info("whisper-server ready", zap.String("base_url", wsp.config.BaseURL), zap.String("model", wsp.config.Model))
	return nil
}

// Transcribe uploads the decoded file to the inference endpoint
func (wsp *WhisperServerProvider) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	body, contentType, err := wsp.createMultipartForm(request)
	if err != nil {
		return nil, &provider.TranscriptionError{
			Code:     "form_creation_failed",
			Message:  "failed to create multipart form",
			Provider: providerName,
			Cause:    err,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, wsp.config.BaseURL+wsp.config.InferencePath, body)
	if err != nil {
		return nil, &provider.TranscriptionError{Code: "request_creation_failed", Message: "failed to create HTTP request", Provider: providerName, Cause: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	wsp.setHeaders(httpReq)

	resp, err := wsp.client.Do(httpReq)
	if err != nil {
		return nil, &provider.TranscriptionError{Code: "request_failed", Message: "HTTP request failed", Provider: providerName, Cause: err}
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.TranscriptionError{Code: "response_read_failed", Message: "failed to read response", Provider: providerName, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &provider.TranscriptionError{
			Code:     "api_error",
			Message:  fmt.Sprintf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseData))),
			Provider: providerName,
		}
	}

	var parsed WhisperServerResponse
	if err := json.Unmarshal(responseData, &parsed); err != nil {
		return nil, &provider.TranscriptionError{Code: "response_parse_failed", Message: "failed to parse response", Provider: providerName, Cause: err}
	}
	if parsed.Error != "" {
		return nil, &provider.TranscriptionError{Code: "api_error", Message: parsed.Error, Provider: providerName}
	}

	language := parsed.DetectedLanguage
	if language == "" {
		language = parsed.Language
	}
	return &provider.TranscriptionResponse{
		Text:     strings.TrimSpace(parsed.Text),
		Language: language,
	}, nil
}

// createMultipartForm creates the multipart form for the API request
func (wsp *WhisperServerProvider) createMultipartForm(request *provider.TranscriptionRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(request.AudioPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(request.AudioPath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err = io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %w", err)
	}

	params := map[string]string{
		"response_format": "json",
		"temperature":     fmt.Sprintf("%.2f", wsp.config.Temperature),
	}
	// whisper-server detects the language itself when the field is absent
	if !model.IsAuto(request.Language) {
		params["language"] = request.Language
	}

	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

func (wsp *WhisperServerProvider) setHeaders(req *http.Request) {
	for key, value := range wsp.config.CustomHeaders {
		req.Header.Set(key, value)
	}
}
