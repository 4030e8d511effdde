package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"whisper-transcriber/internal/app/api/provider"
	"whisper-transcriber/internal/app/media"
	"whisper-transcriber/internal/app/storage"
)

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Upload  UploadConfig   `yaml:"upload"`
	Engine  EngineConfig   `yaml:"engine"`
	Media   MediaConfig    `yaml:"media"`
	Archive storage.Config `yaml:"archive"`
	Log     LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	TaskRetention   time.Duration `yaml:"task_retention"`
}

// Addr is host:port for net/http.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// UploadConfig configures input validation.
type UploadConfig struct {
	MaxBytes   int64    `yaml:"max_bytes"`
	Extensions []string `yaml:"extensions"`
	// Languages are the explicit hints accepted besides "auto". An empty
	// list accepts any code.
	Languages []string `yaml:"languages"`
	TempDir   string   `yaml:"temp_dir"`
}

// EngineConfig selects the engine and bounds its use.
type EngineConfig struct {
	provider.Settings `yaml:",inline"`

	Device   string        `yaml:"device"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxQueue int           `yaml:"max_queue"`
}

// MediaConfig locates the media tools.
type MediaConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultHTTPPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			TaskRetention:   DefaultTaskRetention,
		},
		Upload: UploadConfig{
			MaxBytes:   media.DefaultMaxBytes,
			Extensions: append([]string(nil), media.DefaultExtensions...),
			Languages:  append([]string(nil), media.DefaultLanguages...),
		},
		Engine: EngineConfig{
			Settings: provider.Settings{
				Type:       DefaultEngine,
				Model:      DefaultModel,
				BinaryPath: DefaultWhisperBin,
				ModelsDir:  DefaultModelsDir,
			},
			Device: DefaultDevice,
		},
		Media: MediaConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Archive: storage.Config{Backend: storage.BackendNone},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// Load builds the configuration: defaults, then the YAML file (path, or
// $W2T_CONFIG when path is empty), then W2T_* variables. .env files are
// loaded first so both the file and the overrides can refer to them.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := LoadEnv(); err != nil {
		return nil, err
	}

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFile merges a YAML file into cfg. ${VAR} references are expanded.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

// applyEnv overrides fields from W2T_* variables and the MINIO_* variables.
func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok {
			*dst = splitList(v)
		}
	}
	parse := func(key string, set func(string) error) {
		if v, ok := lookup(key); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	str("W2T_HOST", &c.Server.Host)
	str("W2T_PORT", &c.Server.Port)
	list("W2T_CORS_ORIGINS", &c.Server.CORSOrigins)

	parse("W2T_MAX_UPLOAD_BYTES", func(v string) (err error) {
		c.Upload.MaxBytes, err = strconv.ParseInt(v, 10, 64)
		return err
	})
	list("W2T_EXTENSIONS", &c.Upload.Extensions)
	list("W2T_LANGUAGES", &c.Upload.Languages)
	str("W2T_TEMP_DIR", &c.Upload.TempDir)

	str("W2T_ENGINE", &c.Engine.Type)
	str("W2T_MODEL", &c.Engine.Model)
	str("W2T_MODELS_DIR", &c.Engine.ModelsDir)
	str("W2T_WHISPER_BIN", &c.Engine.BinaryPath)
	str("W2T_ENGINE_URL", &c.Engine.BaseURL)
	str("W2T_ENGINE_API_KEY", &c.Engine.APIKey)
	str("W2T_DEVICE", &c.Engine.Device)
	parse("W2T_AUTO_DOWNLOAD", func(v string) (err error) {
		c.Engine.AutoDownload, err = strconv.ParseBool(v)
		return err
	})
	parse("W2T_THREADS", func(v string) (err error) {
		c.Engine.Threads, err = strconv.Atoi(v)
		return err
	})
	parse("W2T_ENGINE_TIMEOUT", func(v string) (err error) {
		c.Engine.Timeout, err = time.ParseDuration(v)
		return err
	})
	parse("W2T_MAX_QUEUE", func(v string) (err error) {
		c.Engine.MaxQueue, err = strconv.Atoi(v)
		return err
	})

	str("W2T_FFMPEG", &c.Media.FFmpegPath)
	str("W2T_FFPROBE", &c.Media.FFprobePath)

	str("W2T_ARCHIVE", &c.Archive.Backend)
	str("W2T_ARCHIVE_DIR", &c.Archive.Dir)
	str("MINIO_ENDPOINT", &c.Archive.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Archive.AccessKey)
	str("MINIO_SECRET_KEY", &c.Archive.SecretKey)
	str("MINIO_BUCKET", &c.Archive.Bucket)
	parse("MINIO_USE_SSL", func(v string) (err error) {
		c.Archive.UseSSL, err = strconv.ParseBool(v)
		return err
	})

	str("W2T_LOG_LEVEL", &c.Log.Level)
	parse("W2T_LOG_DEV", func(v string) (err error) {
		c.Log.Development, err = strconv.ParseBool(v)
		return err
	})

	return errors.Join(errs...)
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(ValidatePort(c.Server.Port, "server"))
	add(ValidateTimeout(c.Server.ReadTimeout, "server read"))
	add(ValidateTimeout(c.Server.WriteTimeout, "server write"))
	add(ValidateSize(c.Upload.MaxBytes, "upload.max_bytes"))
	if len(c.Upload.Extensions) == 0 {
		add(errors.New("upload.extensions must not be empty"))
	}
	add(ValidateChoice(strings.ToLower(c.Engine.Device), []string{"auto", "gpu", "cpu"}, "engine.device"))
	add(ValidateChoice(c.Engine.Type, []string{"whisper_cpp", "whisper_server", "openai"}, "engine.type"))
	if c.Engine.Timeout != 0 {
		add(ValidateTimeout(c.Engine.Timeout, "engine"))
	}
	add(ValidateQueue(c.Engine.MaxQueue, "engine"))
	if c.Engine.Type == "whisper_server" {
		add(ValidateURL(c.Engine.BaseURL, "engine.base_url"))
	}
	if c.Engine.Type == "openai" && c.Engine.APIKey != "" {
		add(ValidateAPIKey(c.Engine.APIKey, "OpenAI"))
	}
	add(ValidateChoice(c.Archive.Backend, []string{"", storage.BackendNone, storage.BackendFile, storage.BackendMinio}, "archive.backend"))
	if c.Archive.Backend == storage.BackendFile && c.Archive.Dir == "" {
		add(errors.New("archive.dir is required for the filesystem backend"))
	}

	return errors.Join(errs...)
}

func splitList(v string) []string {
	return lo.Compact(lo.Map(strings.Split(v, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}
