package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/model"
	"whisper-transcriber/internal/app/util/command"
)

// TargetSampleRate is the sample rate whisper models expect.
const TargetSampleRate = 16000

// Decoded is a PCM WAV file ready for the engine. Cleanup removes it when the
// decoder created it; it is a no-op when the input was already usable.
type Decoded struct {
	Path    string
	Cleanup func()
}

// Decoder converts arbitrary container/codec input into 16 kHz mono PCM WAV.
type Decoder interface {
	Decode(ctx context.Context, inputPath string) (*Decoded, error)
}

// FFmpeg decodes and probes media with the ffmpeg/ffprobe binaries.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
	runner      command.Runner
	logger      *zap.Logger
}

// NewFFmpeg creates an ffmpeg-backed decoder. Empty paths default to the
// binaries on PATH; an empty tempDir uses os.TempDir.
func NewFFmpeg(ffmpegPath, ffprobePath, tempDir string, logger *zap.Logger) *FFmpeg {
	return NewFFmpegWithRunner(ffmpegPath, ffprobePath, tempDir, command.ExecRunner{}, logger)
}

// NewFFmpegWithRunner is NewFFmpeg with an explicit process runner.
func NewFFmpegWithRunner(ffmpegPath, ffprobePath, tempDir string, runner command.Runner, logger *zap.Logger) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tempDir:     tempDir,
		runner:      runner,
		logger:      logger,
	}
}

// Decode returns inputPath unchanged when it already is 16 kHz mono PCM WAV,
// otherwise converts it into a temporary WAV file.
func (f *FFmpeg) Decode(ctx context.Context, inputPath string) (*Decoded, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.KindDecodeFailed, "cannot access input %s", filepath.Base(inputPath))
	}

	if f.isWAV(inputPath) {
		ok, err := f.Is16kHzMonoWav(ctx, inputPath)
		if err != nil {
			f.logger.Debug("probe failed, decoding anyway", zap.String("file", inputPath), zap.Error(err))
		}
		if ok {
			return &Decoded{Path: inputPath, Cleanup: func() {}}, nil
		}
	}

	outputPath := filepath.Join(f.dir(), "w2t-"+uuid.NewString()+".wav")
	if err := f.convert(ctx, inputPath, outputPath); err != nil {
		os.Remove(outputPath)
		return nil, err
	}

	return &Decoded{
		Path: outputPath,
		Cleanup: func() {
			if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
				f.logger.Warn("failed to remove decoded audio", zap.String("path", outputPath), zap.Error(err))
			}
		},
	}, nil
}

// ExtractAudio pulls the audio track out of a video into a 16 kHz mono WAV at
// outputPath, overwriting it if present.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, outputPath string) error {
	if _, err := os.Stat(videoPath); err != nil {
		return apperrors.Wrapf(err, apperrors.KindDecodeFailed, "video file not found: %s", videoPath)
	}
	return f.convert(ctx, videoPath, outputPath)
}

func (f *FFmpeg) convert(ctx context.Context, inputPath, outputPath string) error {
	f.logger.Debug("converting to 16kHz wav", zap.String("input", inputPath), zap.String("output", outputPath))

	res, err := f.runner.Run(ctx, f.ffmpegPath, ConvertArgs(inputPath, outputPath)...)
	if err != nil {
		stderr := res.StderrTail(400)
		f.logger.Debug("ffmpeg failed", zap.String("input", inputPath), zap.String("stderr", stderr), zap.Error(err))
		return apperrors.Wrap(fmt.Errorf("%w: %s", err, stderr), apperrors.KindDecodeFailed, "ffmpeg could not decode the audio")
	}

	f.logger.Debug("audio conversion completed", zap.String("output", outputPath))
	return nil
}

// ConvertArgs builds the ffmpeg arguments for lossless 16 kHz mono PCM output.
func ConvertArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-nostdin",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(TargetSampleRate),
		"-ac", "1",
		outputPath,
	}
}

// Probe runs ffprobe and parses its JSON output.
func (f *FFmpeg) Probe(ctx context.Context, filePath string) (*model.FFProbeOutput, error) {
	res, err := f.runner.Run(ctx, f.ffprobePath, "-v", "quiet", "-print_format", "json", "-show_streams", "-show_format", filePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", filepath.Base(filePath), err)
	}
	return ParseProbeOutput([]byte(res.Stdout))
}

// Is16kHzMonoWav reports whether the file can go to the engine without conversion.
func (f *FFmpeg) Is16kHzMonoWav(ctx context.Context, filePath string) (bool, error) {
	probe, err := f.Probe(ctx, filePath)
	if err != nil {
		return false, err
	}
	return IsEngineReady(probe), nil
}

// Duration returns the media duration in whole seconds, rounded.
func (f *FFmpeg) Duration(ctx context.Context, filePath string) (int, error) {
	res, err := f.runner.Run(ctx, f.ffprobePath, "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", filePath)
	if err != nil {
		return 0, err
	}
	return ParseDurationOutput(res.Stdout)
}

func (f *FFmpeg) isWAV(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return strings.EqualFold(filepath.Ext(path), ".wav")
	}
	return mtype.Is("audio/wav")
}

func (f *FFmpeg) dir() string {
	if f.tempDir != "" {
		return f.tempDir
	}
	return os.TempDir()
}

// ParseProbeOutput decodes ffprobe JSON.
func ParseProbeOutput(data []byte) (*model.FFProbeOutput, error) {
	var probe model.FFProbeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return &probe, nil
}

// IsEngineReady reports whether the first audio stream is 16 kHz mono PCM.
func IsEngineReady(probe *model.FFProbeOutput) bool {
	for _, stream := range probe.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		return stream.CodecName == "pcm_s16le" && stream.SampleRate == TargetSampleRate && stream.Channels == 1
	}
	return false
}

// ParseDurationOutput parses ffprobe's bare duration output.
func ParseDurationOutput(output string) (int, error) {
	durationFloat, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(durationFloat)), nil
}
