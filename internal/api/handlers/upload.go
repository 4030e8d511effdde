package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisper-transcriber/internal/api/dto"
	"whisper-transcriber/internal/api/middleware"
	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/pipeline"
	"whisper-transcriber/internal/app/progress"
	"whisper-transcriber/internal/app/tasks"
)

const (
	// FileSizeHeader lets a client declare the file size up front so
	// oversize uploads are refused before any byte is read.
	FileSizeHeader = "X-File-Size"

	// eventBuffer holds every event staging can emit: 101 percentages and
	// the terminal one.
	eventBuffer = 128

	maxLanguageField = 64
)

// UploadHandler handles POST /upload
type UploadHandler struct {
	pipeline *pipeline.Pipeline
	tasks    *tasks.Registry
	logger   *zap.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(p *pipeline.Pipeline, registry *tasks.Registry, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{pipeline: p, tasks: registry, logger: logger}
}

// Upload handles POST /upload
//
// @Summary Transcribe an uploaded audio file
// @Description Streams the multipart "file" field to a temporary file, validates it and transcribes it.
// @Description Responds with JSON by default, with server-sent progress events when the client accepts
// @Description text/event-stream, or with 202 and a task id when async=true.
// @Tags transcription
// @Accept multipart/form-data
// @Produce json
// @Produce text/event-stream
// @Param file formData file true "Audio file (.wav or .mp3)"
// @Param language formData string false "Language hint: auto or a configured code" default(auto)
// @Param async query bool false "Process in the background and return a task id"
// @Param X-File-Size header int false "Declared file size in bytes"
// @Success 200 {object} dto.TranscriptionResponse "Transcript"
// @Success 202 {object} dto.TaskAccepted "Task accepted"
// @Failure 400 {object} errors.APIError "Malformed request or unsupported language"
// @Failure 413 {object} errors.APIError "File too large"
// @Failure 415 {object} errors.APIError "Unsupported file type"
// @Failure 422 {object} errors.APIError "Audio could not be decoded"
// @Failure 503 {object} errors.APIError "Transcriber busy"
// @Failure 500 {object} errors.APIError "Transcription failed"
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	var query dto.UploadQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	mr, err := c.Request.MultipartReader()
	if err != nil {
		middleware.HandleError(c, apperrors.BadRequest("expected a multipart/form-data body"))
		return
	}

	declared := declaredSize(c)
	switch {
	case query.Async:
		h.uploadAsync(c, mr, query.Language, declared)
	case wantsEventStream(c):
		h.uploadStream(c, mr, query.Language, declared)
	default:
		h.uploadSync(c, mr, query.Language, declared)
	}
}

func (h *UploadHandler) uploadSync(c *gin.Context, mr *multipart.Reader, language string, declared int64) {
	ctx := c.Request.Context()
	rep := progress.NewReporter(h.logSink(c))
	defer rep.Close()

	staged, language, err := h.receive(ctx, mr, language, declared, rep)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer staged.Cleanup()

	result, err := h.pipeline.Process(ctx, staged, language, rep)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTranscriptionResponse(result))
}

// uploadStream stages the file before the stream starts, so rejected
// uploads still get a plain status code.
func (h *UploadHandler) uploadStream(c *gin.Context, mr *multipart.Reader, language string, declared int64) {
	ctx := c.Request.Context()
	events := progress.NewChanSink(eventBuffer)
	rep := progress.NewReporter(progress.Multi(events, h.logSink(c)))

	staged, language, err := h.receive(ctx, mr, language, declared, rep)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	go func() {
		defer staged.Cleanup()
		defer rep.Close()
		_, _ = h.pipeline.Process(ctx, staged, language, rep)
	}()

	startEventStream(c)
	for ev := range events.Events() {
		writeEvent(c, ev)
	}
}

// uploadAsync stages the file, answers 202 and keeps transcribing after the
// request ends. Only POST /stop cancels the work.
func (h *UploadHandler) uploadAsync(c *gin.Context, mr *multipart.Reader, language string, declared int64) {
	staged, language, err := h.receive(c.Request.Context(), mr, language, declared, progress.NewReporter(h.logSink(c)))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	task := h.tasks.Create(staged.Filename, cancel)
	logger := h.logger.With(zap.String("task_id", task.ID))
	rep := progress.NewReporter(progress.Multi(task, progress.NewLogSink(logger)))
	rep.Uploading(100)

	go func() {
		defer cancel()
		defer staged.Cleanup()
		defer rep.Close()
		_, _ = h.pipeline.Process(ctx, staged, language, rep)
	}()

	logger.Info("task accepted", zap.String("file", staged.Filename), zap.Int64("bytes", staged.Size))
	c.JSON(http.StatusAccepted, dto.NewTaskAccepted(task.ID))
}

// receive walks the multipart body. The file part is staged as soon as it
// arrives; a language field may come before or after it. On error the
// reporter has already been failed.
func (h *UploadHandler) receive(ctx context.Context, mr *multipart.Reader, language string, declared int64,
	rep *progress.Reporter) (*pipeline.Staged, string, error) {
	var staged *pipeline.Staged
	fail := func(err error) (*pipeline.Staged, string, error) {
		staged.Cleanup()
		rep.Fail(err)
		return nil, "", err
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(apperrors.BadRequest("malformed multipart body"))
		}

		switch part.FormName() {
		case "language":
			value, err := io.ReadAll(io.LimitReader(part, maxLanguageField))
			if err != nil {
				part.Close()
				return fail(apperrors.BadRequest("malformed language field"))
			}
			language = strings.TrimSpace(string(value))
		case "file":
			if staged != nil {
				part.Close()
				return fail(apperrors.BadRequest("only one file per request"))
			}
			if part.FileName() == "" {
				part.Close()
				return fail(apperrors.BadRequest("file field has no filename"))
			}
			staged, err = h.pipeline.Stage(ctx, part.FileName(), declared, part, rep)
			if err != nil {
				part.Close()
				return nil, "", err
			}
		}
		part.Close()
	}

	if staged == nil {
		return fail(apperrors.BadRequest("missing file field"))
	}
	language, err := h.pipeline.Validator().ValidateLanguage(language)
	if err != nil {
		return fail(err)
	}
	return staged, language, nil
}

func (h *UploadHandler) logSink(c *gin.Context) progress.Sink {
	return progress.NewLogSink(h.logger.With(zap.String("request_id", c.GetString(middleware.RequestIDKey))))
}

func declaredSize(c *gin.Context) int64 {
	size, err := strconv.ParseInt(c.GetHeader(FileSizeHeader), 10, 64)
	if err != nil || size < 0 {
		return -1
	}
	return size
}

func wantsEventStream(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}
