package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/media"
	"whisper-transcriber/internal/app/metrics"
	"whisper-transcriber/internal/app/model"
	"whisper-transcriber/internal/app/progress"
	"whisper-transcriber/internal/app/storage"
)

// Transcriber is the adapter the pipeline hands staged files to.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (model.TranscriptionResult, error)
}

// Pipeline runs validate, stage, transcribe and report for one input.
// Every error path ends the reporter with a terminal error event.
type Pipeline struct {
	validator   *media.Validator
	transcriber Transcriber
	archive     storage.Archive
	metrics     *metrics.Metrics
	tempDir     string
	logger      *zap.Logger
}

// New creates a pipeline. archive and m may be nil.
func New(validator *media.Validator, transcriber Transcriber, archive storage.Archive,
	m *metrics.Metrics, tempDir string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		validator:   validator,
		transcriber: transcriber,
		archive:     archive,
		metrics:     m,
		tempDir:     tempDir,
		logger:      logger,
	}
}

// Validator exposes the configured limits.
func (p *Pipeline) Validator() *media.Validator {
	return p.validator
}

// Staged is an input copied to a private temporary file.
type Staged struct {
	Path     string
	Filename string
	Size     int64
}

// Cleanup removes the staged copy.
func (s *Staged) Cleanup() {
	if s != nil && s.Path != "" {
		os.Remove(s.Path)
	}
}

// Stage rejects bad names and oversize inputs, then copies src to a
// temporary file while reporting upload progress. declaredSize is the size
// the caller claims, -1 when unknown; a declared size above the limit is
// rejected without reading anything.
func (p *Pipeline) Stage(ctx context.Context, filename string, declaredSize int64, src io.Reader, rep *progress.Reporter) (*Staged, error) {
	staged, err := p.stage(ctx, filename, declaredSize, src, rep)
	if err != nil {
		rep.Fail(err)
		return nil, err
	}
	return staged, nil
}

func (p *Pipeline) stage(ctx context.Context, filename string, declaredSize int64, src io.Reader, rep *progress.Reporter) (*Staged, error) {
	if err := p.validator.ValidateName(filename); err != nil {
		return nil, err
	}
	if declaredSize >= 0 {
		if err := p.validator.ValidateSize(declaredSize); err != nil {
			return nil, err
		}
	}

	tmp, err := os.CreateTemp(p.tempDir, "w2t-upload-*"+filepath.Ext(filename))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, "create staging file")
	}
	staged := &Staged{Path: tmp.Name(), Filename: filepath.Base(filename)}

	rep.Uploading(0)
	limit := p.validator.MaxBytes()
	counter := progress.NewCountingReader(io.LimitReader(src, limit+1), declaredSize, rep)
	n, err := io.Copy(tmp, counter)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}

	switch {
	case err != nil && ctx.Err() != nil:
		err = apperrors.Wrap(ctx.Err(), apperrors.KindCanceled, "upload canceled")
	case err != nil:
		err = apperrors.Wrap(err, apperrors.KindInternal, "upload interrupted")
	case n > limit:
		err = apperrors.FileTooLarge(-1, limit)
	}
	if err != nil {
		staged.Cleanup()
		return nil, err
	}

	staged.Size = n
	rep.Uploading(100)
	p.metrics.ObserveUpload(n)
	p.logger.Debug("input staged", zap.String("file", staged.Filename), zap.Int64("bytes", n))
	return staged, nil
}

// Process validates the language hint and transcribes a staged input.
func (p *Pipeline) Process(ctx context.Context, staged *Staged, language string, rep *progress.Reporter) (model.TranscriptionResult, error) {
	result, err := p.process(ctx, staged, language, rep)
	if err != nil {
		rep.Fail(err)
		p.logger.Warn("transcription failed",
			zap.String("file", staged.Filename),
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err))
		return model.TranscriptionResult{}, err
	}
	rep.Done(result)
	return result, nil
}

func (p *Pipeline) process(ctx context.Context, staged *Staged, language string, rep *progress.Reporter) (model.TranscriptionResult, error) {
	language, err := p.validator.ValidateLanguage(language)
	if err != nil {
		return model.TranscriptionResult{}, err
	}

	rep.Transcribing()
	result, err := p.transcriber.Transcribe(ctx, staged.Path, language)
	if err != nil {
		return model.TranscriptionResult{}, err
	}
	result.SizeBytes = staged.Size

	if p.archive != nil {
		archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		location, err := p.archive.Store(archiveCtx, staged.Filename, result)
		if err != nil {
			p.logger.Warn("failed to archive transcript", zap.String("file", staged.Filename), zap.Error(err))
		} else {
			result.ArchiveURL = location
		}
	}
	return result, nil
}

// Run validates the request, stages src and transcribes it. The staged copy
// is removed before Run returns.
func (p *Pipeline) Run(ctx context.Context, req model.UploadRequest, src io.Reader, rep *progress.Reporter) (model.TranscriptionResult, error) {
	language, err := p.validator.ValidateRequest(req)
	if err != nil {
		rep.Fail(err)
		return model.TranscriptionResult{}, err
	}

	staged, err := p.Stage(ctx, req.Filename, req.DeclaredSize, src, rep)
	if err != nil {
		return model.TranscriptionResult{}, err
	}
	defer staged.Cleanup()

	return p.Process(ctx, staged, language, rep)
}

// RunFile runs the pipeline on a local file, as the CLI does.
func (p *Pipeline) RunFile(ctx context.Context, path, language string, rep *progress.Reporter) (model.TranscriptionResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		err = statError(path, err)
		rep.Fail(err)
		return model.TranscriptionResult{}, err
	}
	if info.IsDir() {
		err = apperrors.Newf(apperrors.KindUnsupportedFormat, "%s is a directory", path)
		rep.Fail(err)
		return model.TranscriptionResult{}, err
	}

	req := model.UploadRequest{Filename: filepath.Base(path), DeclaredSize: info.Size(), Language: language}
	if _, err := p.validator.ValidateRequest(req); err != nil {
		rep.Fail(err)
		return model.TranscriptionResult{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		err = statError(path, err)
		rep.Fail(err)
		return model.TranscriptionResult{}, err
	}
	defer f.Close()

	return p.Run(ctx, req, f, rep)
}

func statError(path string, err error) error {
	if os.IsNotExist(err) {
		return apperrors.InputNotFound(path)
	}
	return apperrors.Wrap(err, apperrors.KindInternal, fmt.Sprintf("cannot read %s", path))
}
