package whisper_cpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"whisper-transcriber/internal/app/api/provider"
	"whisper-transcriber/internal/app/model"
	"whisper-transcriber/internal/app/util/command"
)

const providerName = "whisper_cpp"

// LocalProviderConfig configures the whisper.cpp command-line engine.
type LocalProviderConfig struct {
	BinaryPath   string
	ModelsDir    string
	Model        string
	AutoDownload bool
	Threads      int
	Prompt       string
	TempDir      string
}

// LocalTranscriber runs the whisper.cpp binary once per request.
type LocalTranscriber struct {
	config     LocalProviderConfig
	runner     command.Runner
	downloader *Downloader
	logger     *zap.Logger

	modelPath string
}

// NewLocalTranscriber creates a new instance of LocalTranscriber.
func NewLocalTranscriber(config LocalProviderConfig, runner command.Runner, logger *zap.Logger) *LocalTranscriber {
	if config.BinaryPath == "" {
		config.BinaryPath = "whisper-cli"
	}
	if config.Model == "" {
		config.Model = "base"
	}
	if runner == nil {
		runner = command.ExecRunner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalTranscriber{
		config:     config,
		runner:     runner,
		downloader: &Downloader{Logger: logger},
		logger:     logger,
	}
}

// WithDownloader replaces the model downloader.
func (lt *LocalTranscriber) WithDownloader(d *Downloader) *LocalTranscriber {
	lt.downloader = d
	return lt
}

func (lt *LocalTranscriber) Name() string {
	return providerName
}

// Load resolves the ggml model file, downloading it when allowed.
func (lt *LocalTranscriber) Load(ctx context.Context) error {
	path := ResolveModelPath(lt.config.Model, lt.config.ModelsDir)
	if _, err := os.Stat(path); err == nil {
		lt.modelPath = path
		lt.logger.Info("model ready", zap.String("path", path))
		return nil
	}

	catalogModel, known := LookupModel(lt.config.Model)
	if !lt.config.AutoDownload || !known {
		return &provider.TranscriptionError{
			Code:     "model_not_found",
			Message:  fmt.Sprintf("model file %s not found", path),
			Provider: providerName,
		}
	}

	downloaded, err := lt.downloader.Download(ctx, catalogModel, filepath.Dir(path))
	if err != nil {
		return &provider.TranscriptionError{
			Code:     "model_download_failed",
			Message:  fmt.Sprintf("could not download %s", catalogModel.FileName()),
			Provider: providerName,
			Cause:    err,
		}
	}
	lt.modelPath = downloaded
	return nil
}

// Transcribe runs whisper.cpp with JSON output and reads the result file.
func (lt *LocalTranscriber) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	if lt.modelPath == "" {
		return nil, &provider.TranscriptionError{Code: "model_not_loaded", Message: "model not loaded", Provider: providerName}
	}

	tempDir := lt.config.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	outputBase := filepath.Join(tempDir, "w2t-"+uuid.NewString())
	outputFile := outputBase + ".json"
	defer os.Remove(outputFile)

	args := lt.BuildArgs(request, outputBase)
	lt.logger.Debug("running transcription command",
		zap.String("binary", lt.config.BinaryPath), zap.String("args", strings.Join(args, " ")))

	res, err := lt.runner.Run(ctx, lt.config.BinaryPath, args...)
	if err != nil {
		return nil, &provider.TranscriptionError{
			Code:     "command_failed",
			Message:  res.StderrTail(400),
			Provider: providerName,
			Cause:    err,
		}
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, &provider.TranscriptionError{
			Code:     "output_missing",
			Message:  "failed to read output file",
			Provider: providerName,
			Cause:    err,
		}
	}

	return ParseOutput(data)
}

// BuildArgs assembles the whisper.cpp command line.
func (lt *LocalTranscriber) BuildArgs(request *provider.TranscriptionRequest, outputBase string) []string {
	language := request.Language
	if language == "" {
		language = model.LanguageAuto
	}

	args := []string{
		"-m", lt.modelPath,
		"-f", request.AudioPath,
		"-l", language,
		"-oj",
		"-of", outputBase,
		"-np",
	}
	if lt.config.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(lt.config.Threads))
	}
	if lt.config.Prompt != "" {
		args = append(args, "--prompt", lt.config.Prompt)
	}
	if !request.Device.IsAccelerator() {
		args = append(args, "-ng")
	}
	return args
}

type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Text string `json:"text"`
	} `json:"transcription"`
}

// ParseOutput reads the -oj JSON document.
func ParseOutput(data []byte) (*provider.TranscriptionResponse, error) {
	var out cliOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &provider.TranscriptionError{
			Code:     "response_parse_failed",
			Message:  "failed to parse whisper.cpp JSON output",
			Provider: providerName,
			Cause:    err,
		}
	}

	var sb strings.Builder
	for _, segment := range out.Transcription {
		sb.WriteString(segment.Text)
	}
	return &provider.TranscriptionResponse{
		Text:     strings.TrimSpace(sb.String()),
		Language: out.Result.Language,
	}, nil
}
