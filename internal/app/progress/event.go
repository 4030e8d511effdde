package progress

import (
	"time"

	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/model"
)

// Phase is the stage a request is in.
type Phase string

const (
	PhaseUploading    Phase = "uploading"
	PhaseTranscribing Phase = "transcribing"
	PhaseDone         Phase = "done"
	PhaseError        Phase = "error"
)

// EventError is the user-facing part of a failure.
type EventError struct {
	Kind    apperrors.Kind `json:"kind"`
	Message string         `json:"message"`
}

// Event is one progress update. Percent is set for uploading only, Error for
// the error phase only and Result for done only.
type Event struct {
	Seq     int64                      `json:"seq"`
	Time    time.Time                  `json:"time"`
	Phase   Phase                      `json:"phase"`
	Percent int                        `json:"percent"`
	Error   *EventError                `json:"error,omitempty"`
	Result  *model.TranscriptionResult `json:"result,omitempty"`
}

// Terminal reports whether no event can follow this one.
func (e Event) Terminal() bool {
	return e.Phase == PhaseDone || e.Phase == PhaseError
}

// Err rebuilds a classified error from a terminal error event.
func (e Event) Err() error {
	if e.Error == nil {
		return nil
	}
	return apperrors.New(e.Error.Kind, e.Error.Message)
}
