package dto

import (
	"time"

	"whisper-transcriber/internal/app/tasks"
)

// TaskAccepted is returned for asynchronous uploads.
type TaskAccepted struct {
	TaskID      string `json:"task_id" example:"5b7c1f0e-3a9d-4c55-9d0e-0c1f2a3b4c5d"`
	ProgressURL string `json:"progress_url" example:"/progress/5b7c1f0e-3a9d-4c55-9d0e-0c1f2a3b4c5d"`
	StopURL     string `json:"stop_url" example:"/stop/5b7c1f0e-3a9d-4c55-9d0e-0c1f2a3b4c5d"`
}

// NewTaskAccepted builds the links for a task id.
func NewTaskAccepted(id string) TaskAccepted {
	return TaskAccepted{TaskID: id, ProgressURL: "/progress/" + id, StopURL: "/stop/" + id}
}

// TaskResponse is the JSON view of an asynchronous upload.
type TaskResponse struct {
	ID        string                 `json:"id"`
	Filename  string                 `json:"filename"`
	Status    tasks.Status           `json:"status" example:"transcribing"`
	Percent   int                    `json:"percent"`
	CreatedAt time.Time              `json:"created_at"`
	Result    *TranscriptionResponse `json:"result,omitempty"`
	Error     *TaskError             `json:"error,omitempty"`
}

// TaskError is the failure of a finished task.
type TaskError struct {
	Kind    string `json:"kind" example:"canceled"`
	Message string `json:"message"`
}

// NewTaskResponse converts a task snapshot.
func NewTaskResponse(s tasks.Snapshot) TaskResponse {
	out := TaskResponse{
		ID:        s.ID,
		Filename:  s.Filename,
		Status:    s.Status,
		Percent:   s.Percent,
		CreatedAt: s.CreatedAt,
	}
	if s.Result != nil {
		res := NewTranscriptionResponse(*s.Result)
		out.Result = &res
	}
	if s.Error != nil {
		out.Error = &TaskError{Kind: string(s.Error.Kind), Message: s.Error.Message}
	}
	return out
}

// StopResponse acknowledges POST /stop/:id.
type StopResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status" example:"stopping"`
}
