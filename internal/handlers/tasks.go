package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/asr-console/internal/views"
)

// TasksHandler serves the task view over plain HTTP
type TasksHandler struct {
	tasks *views.TaskManager
}

// NewTasksHandler creates a new tasks handler
func NewTasksHandler(tasks *views.TaskManager) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// List refreshes audio and tasks and returns the view
func (h *TasksHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := errors.Join(h.tasks.RefreshAudio(ctx), h.tasks.RefreshTasks(ctx)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.tasks.Snapshot())
}

type submitRequest struct {
	AudioFileID int    `json:"audio_file_id"`
	ModelName   string `json:"model_name"`
}

// Submit starts recognition of the chosen audio file
func (h *TasksHandler) Submit(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", "ERR_INVALID_BODY")
	}

	task, err := h.tasks.Submit(c.UserContext(), req.AudioFileID, req.ModelName)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"task":  task,
		"state": h.tasks.Snapshot(),
	})
}

// Delete removes a task
func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task id", "ERR_INVALID_ID")
	}
	if err := h.tasks.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.tasks.Snapshot())
}
