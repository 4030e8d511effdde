package progress

import (
	"sync"
	"time"

	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/model"
)

type state int

const (
	stateIdle state = iota
	stateUploading
	stateTranscribing
	stateFinished
)

// Reporter turns pipeline milestones into an ordered event stream:
// uploading* transcribing (done|error). Calls that would break the order are
// ignored, so callers may report freely.
type Reporter struct {
	mu          sync.Mutex
	sink        Sink
	state       state
	seq         int64
	lastPercent int
	now         func() time.Time
}

// NewReporter creates a reporter writing to sink.
func NewReporter(sink Sink) *Reporter {
	if sink == nil {
		sink = Discard
	}
	return &Reporter{sink: sink, now: time.Now}
}

// Uploading reports transfer progress. Percent is clamped to 0-100 and never
// goes below the last reported value; repeats are dropped.
func (r *Reporter) Uploading(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state > stateUploading {
		return
	}
	percent = max(0, min(100, percent))
	if r.state == stateUploading && percent <= r.lastPercent {
		return
	}
	r.state = stateUploading
	r.lastPercent = percent
	r.emit(Event{Phase: PhaseUploading, Percent: percent})
}

// Transcribing marks the start of inference. Only the first call counts.
func (r *Reporter) Transcribing() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcribing()
}

func (r *Reporter) transcribing() {
	if r.state >= stateTranscribing {
		return
	}
	r.state = stateTranscribing
	r.emit(Event{Phase: PhaseTranscribing})
}

// Done emits the terminal success event.
func (r *Reporter) Done(result model.TranscriptionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == stateFinished {
		return
	}
	r.transcribing()
	r.state = stateFinished
	r.emit(Event{Phase: PhaseDone, Result: &result})
}

// Fail emits the terminal error event.
func (r *Reporter) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == stateFinished {
		return
	}
	r.state = stateFinished
	r.emit(Event{Phase: PhaseError, Error: &EventError{
		Kind:    apperrors.KindOf(err),
		Message: apperrors.UserMessage(err),
	}})
}

// Close guarantees a terminal event: if none was emitted yet, it emits an
// internal error.
func (r *Reporter) Close() {
	r.Fail(apperrors.New(apperrors.KindInternal, "request ended before completion"))
}

// Finished reports whether the terminal event has been emitted.
func (r *Reporter) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateFinished
}

func (r *Reporter) emit(ev Event) {
	r.seq++
	ev.Seq = r.seq
	ev.Time = r.now().UTC()
	r.sink.Emit(ev)
}
