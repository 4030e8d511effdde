package provider

import (
	"fmt"
	"time"

	"whisper-transcriber/internal/app/device"
)

// TranscriptionRequest is one engine invocation on an already decoded file.
type TranscriptionRequest struct {
	AudioPath string
	// Language is "auto" or a language code; engines pass it through unchanged.
	Language string
	Model    string
	Device   device.Device
}

// TranscriptionResponse is what the engine returned.
type TranscriptionResponse struct {
	Text string `json:"text"`
	// Language is the detected language, empty when the engine does not report it.
	Language string `json:"language,omitempty"`
}

// Settings configures every engine type; each engine reads the fields it needs.
type Settings struct {
	Type  string `yaml:"type"`
	Model string `yaml:"model"`

	// whisper_cpp
	BinaryPath   string `yaml:"binary_path"`
	ModelsDir    string `yaml:"models_dir"`
	AutoDownload bool   `yaml:"auto_download"`
	Threads      int    `yaml:"threads"`
	Prompt       string `yaml:"prompt"`
	TempDir      string `yaml:"temp_dir"`

	// whisper_server, openai
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// TranscriptionError represents an engine-specific failure.
type TranscriptionError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Cause    error  `json:"-"`
}

func (e *TranscriptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}
