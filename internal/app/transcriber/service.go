package transcriber

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"whisper-transcriber/internal/app/api/provider"
	"whisper-transcriber/internal/app/audio"
	"whisper-transcriber/internal/app/device"
	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/metrics"
	"whisper-transcriber/internal/app/model"
)

// Config tunes the adapter around the engine.
type Config struct {
	// Model is reported in results; the engine resolves it itself.
	Model string
	// Timeout bounds one engine call. Zero means no limit.
	Timeout time.Duration
	// MaxQueue rejects new callers with Busy once that many are waiting.
	// Zero means unlimited.
	MaxQueue int
}

// Service wraps one engine on one device. Engine calls are serialized:
// callers are admitted one at a time in arrival order.
type Service struct {
	engine  provider.TranscriptionProvider
	decoder audio.Decoder
	device  device.Device
	config  Config
	metrics *metrics.Metrics
	logger  *zap.Logger

	slot chan struct{}

	mu      sync.Mutex
	waiting int

	// guarded by slot
	loaded bool
}

// NewService reads the memoized device once and returns a service whose
// model is loaded on first use.
func NewService(engine provider.TranscriptionProvider, decoder audio.Decoder, detector *device.Detector,
	config Config, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:  engine,
		decoder: decoder,
		device:  detector.Device(),
		config:  config,
		metrics: m,
		logger:  logger,
		slot:    make(chan struct{}, 1),
	}
}

// Device is the compute device every call runs on.
func (s *Service) Device() device.Device {
	return s.device
}

// Model is the configured model size or path.
func (s *Service) Model() string {
	return s.config.Model
}

// Engine names the configured engine.
func (s *Service) Engine() string {
	return s.engine.Name()
}

// Transcribe decodes audioPath, waits for the engine, loads the model if
// needed and runs inference with the language hint passed through unchanged.
func (s *Service) Transcribe(ctx context.Context, audioPath, language string) (result model.TranscriptionResult, err error) {
	language = model.NormalizeLanguage(language)
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = string(apperrors.KindOf(err))
		}
		s.metrics.ObserveTranscription(status, s.device.String(), time.Since(start))
	}()

	decoded, err := s.decoder.Decode(ctx, audioPath)
	if err != nil {
		if ctx.Err() != nil {
			return model.TranscriptionResult{}, apperrors.Wrap(err, apperrors.KindCanceled, "canceled while decoding")
		}
		if apperrors.KindOf(err) == apperrors.KindInternal {
			err = apperrors.Wrap(err, apperrors.KindDecodeFailed, "audio decode failed")
		}
		return model.TranscriptionResult{}, err
	}
	defer decoded.Cleanup()

	release, err := s.acquire(ctx)
	if err != nil {
		return model.TranscriptionResult{}, err
	}
	defer release()

	if err := s.ensureLoaded(ctx); err != nil {
		return model.TranscriptionResult{}, err
	}

	engineCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		engineCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	inferenceStart := time.Now()
	resp, err := s.engine.Transcribe(engineCtx, &provider.TranscriptionRequest{
		AudioPath: decoded.Path,
		Language:  language,
		Model:     s.config.Model,
		Device:    s.device,
	})
	elapsed := time.Since(inferenceStart)
	if err != nil {
		return model.TranscriptionResult{}, s.classifyEngineError(ctx, engineCtx, err)
	}

	detected := resp.Language
	if detected == "" {
		detected = language
	}

	s.logger.Info("transcription finished",
		zap.String("language", detected),
		zap.String("device", s.device.String()),
		zap.Duration("elapsed", elapsed),
		zap.Int("chars", len(resp.Text)),
	)

	return model.TranscriptionResult{
		Language:       detected,
		Text:           resp.Text,
		Device:         s.device.String(),
		Model:          s.config.Model,
		ProcessingTime: elapsed,
	}, nil
}

// acquire waits for the engine slot. The channel hands the slot to waiters
// in the order the runtime queued them.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	s.mu.Lock()
	if s.config.MaxQueue > 0 && s.waiting >= s.config.MaxQueue {
		s.mu.Unlock()
		return nil, apperrors.Newf(apperrors.KindBusy, "transcriber busy: %d requests already waiting", s.waiting)
	}
	s.waiting++
	s.metrics.SetQueueDepth(s.waiting)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.waiting--
		s.metrics.SetQueueDepth(s.waiting)
		s.mu.Unlock()
	}()

	select {
	case s.slot <- struct{}{}:
		return func() { <-s.slot }, nil
	case <-ctx.Done():
		return nil, apperrors.Wrap(ctx.Err(), apperrors.KindCanceled, "canceled while waiting for the transcriber")
	}
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	start := time.Now()
	s.logger.Info("loading model", zap.String("engine", s.engine.Name()), zap.String("model", s.config.Model))
	if err := s.engine.Load(ctx); err != nil {
		if ctx.Err() != nil {
			return apperrors.Wrap(err, apperrors.KindCanceled, "canceled while loading model")
		}
		return apperrors.Wrap(err, apperrors.KindTranscriptionFailed, "model load failed")
	}
	s.loaded = true
	s.logger.Info("model loaded", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Service) classifyEngineError(callerCtx, engineCtx context.Context, err error) error {
	switch {
	case callerCtx.Err() != nil:
		return apperrors.Wrap(err, apperrors.KindCanceled, "transcription canceled")
	case stderrors.Is(engineCtx.Err(), context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.KindTranscriptionFailed,
			fmt.Sprintf("transcription timed out after %s", s.config.Timeout))
	default:
		s.logger.Warn("engine failed", zap.Error(err))
		return apperrors.Wrap(err, apperrors.KindTranscriptionFailed, "transcription failed")
	}
}
