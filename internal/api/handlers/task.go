package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisper-transcriber/internal/api/dto"
	apierrors "whisper-transcriber/internal/api/errors"
	"whisper-transcriber/internal/api/middleware"
	"whisper-transcriber/internal/app/progress"
	"whisper-transcriber/internal/app/tasks"
)

// TaskHandler serves the progress, state and cancellation of async uploads.
type TaskHandler struct {
	tasks  *tasks.Registry
	logger *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(registry *tasks.Registry, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: registry, logger: logger}
}

// Progress handles GET /progress/:id
//
// @Summary Follow a task's progress
// @Description Server-sent events: every recorded event is replayed, then new ones follow until the terminal event.
// @Tags tasks
// @Produce text/event-stream
// @Param id path string true "Task ID"
// @Success 200 {object} dto.EventResponse "Event stream"
// @Failure 404 {object} errors.APIError "Task not found"
// @Router /progress/{id} [get]
func (h *TaskHandler) Progress(c *gin.Context) {
	task, err := h.lookup(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	startEventStream(c)
	err = task.Follow(c.Request.Context(), func(ev progress.Event) error {
		writeEvent(c, ev)
		return nil
	})
	if err != nil {
		h.logger.Debug("progress stream ended early", zap.String("task_id", task.ID), zap.Error(err))
	}
}

// Get handles GET /tasks/:id
//
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse "Task state"
// @Failure 404 {object} errors.APIError "Task not found"
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.lookup(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(task.Snapshot()))
}

// Stop handles POST /stop/:id
//
// @Summary Cancel a task
// @Description The task ends with an error event of kind canceled.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 202 {object} dto.StopResponse "Cancellation requested"
// @Failure 404 {object} errors.APIError "Task not found"
// @Failure 409 {object} errors.APIError "Task already finished"
// @Router /stop/{id} [post]
func (h *TaskHandler) Stop(c *gin.Context) {
	id := c.Param("id")
	switch err := h.tasks.Cancel(id); {
	case errors.Is(err, tasks.ErrNotFound):
		middleware.HandleError(c, apierrors.NewNotFoundError("task"))
	case errors.Is(err, tasks.ErrFinished):
		middleware.HandleError(c, apierrors.NewConflictError("task already finished"))
	case err != nil:
		middleware.HandleError(c, err)
	default:
		h.logger.Info("task stop requested", zap.String("task_id", id))
		c.JSON(http.StatusAccepted, dto.StopResponse{TaskID: id, Status: "stopping"})
	}
}

func (h *TaskHandler) lookup(c *gin.Context) (*tasks.Task, error) {
	task, err := h.tasks.Get(c.Param("id"))
	if errors.Is(err, tasks.ErrNotFound) {
		return nil, apierrors.NewNotFoundError("task")
	}
	return task, err
}
