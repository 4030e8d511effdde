// Package cli holds what the w2t subcommands share: configuration loading,
// exit codes and the transcribe-and-print flow.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"whisper-transcriber/internal/app"
	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/model"
	"whisper-transcriber/internal/app/progress"
	"whisper-transcriber/internal/config"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitValidation    = 2
	ExitDecode        = 3
	ExitTranscription = 4
)

// Options are the persistent flags of the root command.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// ExitError is an error whose message has already been shown to the user.
type ExitError struct {
	Err error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch kind := apperrors.KindOf(err); {
	case apperrors.IsValidationError(err):
		return ExitValidation
	case kind == apperrors.KindDecodeFailed:
		return ExitDecode
	case kind == apperrors.KindTranscriptionFailed, kind == apperrors.KindBusy:
		return ExitTranscription
	default:
		return ExitFailure
	}
}

// Reported tells whether err was already printed by a progress sink.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

// LoadConfig loads the configuration. Interactive commands only log errors
// unless --verbose is set; failures reach the user through the progress sink.
func LoadConfig(opts *Options, interactive bool) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	switch {
	case opts.Verbose:
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	case interactive:
		cfg.Log.Level = "error"
	}
	return cfg, nil
}

// Bootstrap loads the configuration and builds the application.
func Bootstrap(ctx context.Context, opts *Options, interactive bool) (*app.App, func(), error) {
	cfg, err := LoadConfig(opts, interactive)
	if err != nil {
		return nil, nil, err
	}
	return app.InitializeApp(ctx, cfg)
}

// Banner prints the device and model in use.
func Banner(w io.Writer, a *app.App) {
	dev := a.Service.Device()
	name := ""
	if dev.Name != "" {
		name = " (" + dev.Name + ")"
	}
	fmt.Fprintf(w, "Using device: %s%s, engine %s, model %s\n", dev.Backend, name, a.Service.Engine(), a.Service.Model())
}

// DurationProber reports a media file's length in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (int, error)
}

// PrintDuration prints the input length when ffprobe can tell it. Files it
// cannot probe are left to the decoder to reject.
func PrintDuration(ctx context.Context, w io.Writer, prober DurationProber, input string) {
	seconds, err := prober.Duration(ctx, input)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "Duration: %d seconds\n", seconds)
}

// Transcribe runs a local file through the pipeline with terminal progress
// on stderr.
func Transcribe(ctx context.Context, a *app.App, input, language string, forceProgress bool, stderr io.Writer) (model.TranscriptionResult, error) {
	Banner(stderr, a)
	if a.Decoder != nil {
		PrintDuration(ctx, stderr, a.Decoder, input)
	}

	terminal := progress.NewTerminalSink(progress.TerminalConfig{
		Enabled: progress.ShouldShowProgress(stderr, forceProgress),
		Writer:  stderr,
		Label:   filepath.Base(input),
	})
	rep := progress.NewReporter(progress.Multi(terminal, progress.NewLogSink(a.Logger)))
	defer rep.Close()

	result, err := a.Pipeline.RunFile(ctx, input, language, rep)
	if err != nil {
		a.Logger.Debug("transcription failed", zap.String("input", input), zap.Error(err))
		return model.TranscriptionResult{}, &ExitError{Err: err}
	}
	return result, nil
}

// WriteTranscript writes text to output, or to stdout when output is empty
// or "-".
func WriteTranscript(output string, stdout, stderr io.Writer, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if output == "" || output == "-" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	fmt.Fprintf(stderr, "Transcript written to %s\n", output)
	return nil
}
