package config

import "time"

// Default configuration constants
const (
	DefaultHost            = "127.0.0.1"
	DefaultHTTPPort        = "8080"
	DefaultReadTimeout     = 2 * time.Minute
	DefaultWriteTimeout    = 15 * time.Minute
	DefaultShutdownTimeout = 30 * time.Second
	DefaultTaskRetention   = time.Hour

	DefaultEngine     = "whisper_cpp"
	DefaultModel      = "base"
	DefaultModelsDir  = "models"
	DefaultWhisperBin = "whisper-cli"
	DefaultDevice     = "auto"

	DefaultLogLevel = "info"

	// EnvConfigFile names the YAML config file when --config is not given.
	EnvConfigFile = "W2T_CONFIG"
)
