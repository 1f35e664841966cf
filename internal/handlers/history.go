package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/asr-console/internal/storage"
	"github.com/codebuildervaibhav/asr-console/internal/types"
	"github.com/codebuildervaibhav/asr-console/internal/views"
)

// ExportLister lists recorded exports
type ExportLister interface {
	ListExports(ctx context.Context, limit int) ([]storage.ExportRecord, error)
}

// HistoryHandler serves the history view
type HistoryHandler struct {
	history *views.HistoryManager
	exports ExportLister
}

// NewHistoryHandler creates a new history handler. exports may be nil.
func NewHistoryHandler(history *views.HistoryManager, exports ExportLister) *HistoryHandler {
	return &HistoryHandler{history: history, exports: exports}
}

// Get reloads both tabs; ?tab= switches the active one
func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	if tab := c.Query("tab"); tab != "" {
		if err := h.history.SetTab(tab); err != nil {
			return respondError(c, err)
		}
	}
	if err := h.history.Mount(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.history.Snapshot())
}

// DeleteTask removes one task
func (h *HistoryHandler) DeleteTask(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task id", "ERR_INVALID_ID")
	}
	if err := h.history.DeleteTask(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.history.Snapshot())
}

// DeleteResult removes one result
func (h *HistoryHandler) DeleteResult(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid result id", "ERR_INVALID_ID")
	}
	if err := h.history.DeleteResult(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.history.Snapshot())
}

type bulkRequest struct {
	IDs []int `json:"ids"`
}

// BulkDeleteTasks removes several tasks
func (h *HistoryHandler) BulkDeleteTasks(c *fiber.Ctx) error {
	return h.bulk(c, h.history.DeleteTasks)
}

// BulkDeleteResults removes several results
func (h *HistoryHandler) BulkDeleteResults(c *fiber.Ctx) error {
	return h.bulk(c, h.history.DeleteResults)
}

func (h *HistoryHandler) bulk(c *fiber.Ctx, del func(context.Context, []int) (int, error)) error {
	var req bulkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", "ERR_INVALID_BODY")
	}
	deleted, err := del(c.UserContext(), req.IDs)
	if err != nil && deleted == 0 {
		return respondError(c, err)
	}

	resp := fiber.Map{
		"deleted": deleted,
		"state":   h.history.Snapshot(),
	}
	if err != nil {
		resp["error"] = err.Error()
		return c.Status(fiber.StatusMultiStatus).JSON(resp)
	}
	return c.JSON(resp)
}

// Export downloads a past task's result
func (h *HistoryHandler) Export(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task id", "ERR_INVALID_ID")
	}
	a, err := h.history.Export(c.UserContext(), id, c.Query("format", types.FormatTXT))
	if err != nil {
		return respondError(c, err)
	}
	return sendArtifact(c, a)
}

// Exports lists recorded exports, newest first
func (h *HistoryHandler) Exports(c *fiber.Ctx) error {
	if h.exports == nil {
		return c.JSON([]storage.ExportRecord{})
	}
	records, err := h.exports.ListExports(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_DATABASE",
		})
	}
	return c.JSON(records)
}
