package dto

import (
	"whisper-transcriber/internal/app/model"
	"whisper-transcriber/internal/app/progress"
)

// UploadQuery holds the query parameters of POST /upload. The language may
// also arrive as a multipart field, which takes precedence.
type UploadQuery struct {
	Async    bool   `form:"async"`
	Language string `form:"language" binding:"omitempty,language"`
}

// TranscriptionResponse is the body of a successful synchronous upload.
type TranscriptionResponse struct {
	Language     string `json:"language" example:"en"`
	Text         string `json:"text" example:"hello world"`
	Device       string `json:"device" example:"cuda"`
	Model        string `json:"model,omitempty" example:"base"`
	SizeBytes    int64  `json:"size_bytes" example:"2097152"`
	ProcessingMs int64  `json:"processing_ms" example:"1830"`
	ArchiveURL   string `json:"archive_url,omitempty"`
}

// NewTranscriptionResponse converts a pipeline result.
func NewTranscriptionResponse(r model.TranscriptionResult) TranscriptionResponse {
	return TranscriptionResponse{
		Language:     r.Language,
		Text:         r.Text,
		Device:       r.Device,
		Model:        r.Model,
		SizeBytes:    r.SizeBytes,
		ProcessingMs: r.ProcessingMillis(),
		ArchiveURL:   r.ArchiveURL,
	}
}

// EventResponse is the data of one server-sent progress event.
type EventResponse struct {
	Seq     int64                  `json:"seq"`
	Phase   progress.Phase         `json:"phase" example:"uploading"`
	Percent int                    `json:"percent,omitempty"`
	Error   *progress.EventError   `json:"error,omitempty"`
	Result  *TranscriptionResponse `json:"result,omitempty"`
}

// NewEventResponse converts a progress event.
func NewEventResponse(ev progress.Event) EventResponse {
	out := EventResponse{Seq: ev.Seq, Phase: ev.Phase, Error: ev.Error}
	if ev.Phase == progress.PhaseUploading {
		out.Percent = ev.Percent
	}
	if ev.Result != nil {
		res := NewTranscriptionResponse(*ev.Result)
		out.Result = &res
	}
	return out
}
