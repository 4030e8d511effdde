package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"whisper-transcriber/internal/app/model"
	"whisper-transcriber/internal/app/progress"
)

var (
	ErrNotFound = errors.New("task not found")
	ErrFinished = errors.New("task already finished")
)

// Status summarizes where a task is.
type Status string

const (
	StatusPending      Status = "pending"
	StatusUploading    Status = "uploading"
	StatusTranscribing Status = "transcribing"
	StatusDone         Status = "done"
	StatusError        Status = "error"
)

// Task is the in-memory record of one asynchronous upload. It is a
// progress.Sink: it keeps every event so late subscribers can replay them.
type Task struct {
	ID        string
	Filename  string
	CreatedAt time.Time

	mu         sync.Mutex
	events     []progress.Event
	changed    chan struct{}
	cancel     context.CancelFunc
	finishedAt time.Time
}

// Snapshot is the JSON view of a task.
type Snapshot struct {
	ID        string                     `json:"id"`
	Filename  string                     `json:"filename"`
	Status    Status                     `json:"status"`
	Percent   int                        `json:"percent"`
	CreatedAt time.Time                  `json:"created_at"`
	Result    *model.TranscriptionResult `json:"result,omitempty"`
	Error     *progress.EventError       `json:"error,omitempty"`
}

// Emit appends an event and wakes subscribers. Events after the terminal one
// are dropped.
func (t *Task) Emit(ev progress.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.finishedAt.IsZero() {
		return
	}
	t.events = append(t.events, ev)
	if ev.Terminal() {
		t.finishedAt = time.Now()
	}
	close(t.changed)
	t.changed = make(chan struct{})
}

// Since returns the events with Seq > seq and a channel closed on the next
// change. done reports whether the terminal event has been recorded.
func (t *Task) Since(seq int64) (events []progress.Event, changed <-chan struct{}, done bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ev := range t.events {
		if ev.Seq > seq {
			events = append(events, ev)
		}
	}
	return events, t.changed, !t.finishedAt.IsZero()
}

// Follow streams every event, replaying history first, until the terminal
// event or ctx ends.
func (t *Task) Follow(ctx context.Context, fn func(progress.Event) error) error {
	var seq int64
	for {
		events, changed, done := t.Since(seq)
		for _, ev := range events {
			if err := fn(ev); err != nil {
				return err
			}
			seq = ev.Seq
		}
		if done {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Cancel stops the task's context. The pipeline then ends it with a
// canceled error event.
func (t *Task) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.finishedAt.IsZero() {
		return ErrFinished
	}
	if t.cancel != nil {
		t.cancel()
	}
	return nil
}

// Snapshot reports the current state.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{ID: t.ID, Filename: t.Filename, Status: StatusPending, CreatedAt: t.CreatedAt}
	for _, ev := range t.events {
		switch ev.Phase {
		case progress.PhaseUploading:
			snap.Status = StatusUploading
			snap.Percent = ev.Percent
		case progress.PhaseTranscribing:
			snap.Status = StatusTranscribing
			snap.Percent = 100
		case progress.PhaseDone:
			snap.Status = StatusDone
			snap.Result = ev.Result
		case progress.PhaseError:
			snap.Status = StatusError
			snap.Error = ev.Error
		}
	}
	return snap
}

func (t *Task) expired(now time.Time, retention time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.finishedAt.IsZero() && now.Sub(t.finishedAt) > retention
}

// Registry holds tasks in memory. Finished tasks are dropped after the
// retention window.
type Registry struct {
	mu        sync.Mutex
	tasks     map[string]*Task
	retention time.Duration
	now       func() time.Time
}

// NewRegistry creates a registry; retention <= 0 means one hour.
func NewRegistry(retention time.Duration) *Registry {
	if retention <= 0 {
		retention = time.Hour
	}
	return &Registry{tasks: make(map[string]*Task), retention: retention, now: time.Now}
}

// Create registers a new task. cancel is called by Task.Cancel.
func (r *Registry) Create(filename string, cancel context.CancelFunc) *Task {
	task := &Task{
		ID:        uuid.NewString(),
		Filename:  filename,
		CreatedAt: r.now().UTC(),
		changed:   make(chan struct{}),
		cancel:    cancel,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	r.tasks[task.ID] = task
	return task
}

// Get looks a task up.
func (r *Registry) Get(id string) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()

	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return task, nil
}

// Cancel stops a running task.
func (r *Registry) Cancel(id string) error {
	task, err := r.Get(id)
	if err != nil {
		return err
	}
	return task.Cancel()
}

// Len is the number of retained tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

func (r *Registry) prune() {
	now := r.now()
	for id, task := range r.tasks {
		if task.expired(now, r.retention) {
			delete(r.tasks, id)
		}
	}
}
