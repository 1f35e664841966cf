package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/asr-console/internal/views"
)

// ModelsHandler serves the model view
type ModelsHandler struct {
	models *views.ModelManager
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(models *views.ModelManager) *ModelsHandler {
	return &ModelsHandler{models: models}
}

// List refreshes and returns the model table
func (h *ModelsHandler) List(c *fiber.Ctx) error {
	if err := h.models.Refresh(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.models.Snapshot())
}

// Register submits the registration form
func (h *ModelsHandler) Register(c *fiber.Ctx) error {
	var form views.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "Invalid request body", "ERR_INVALID_BODY")
	}
	if err := h.models.Register(c.UserContext(), form); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.models.Snapshot())
}

// Switch makes a model active
func (h *ModelsHandler) Switch(c *fiber.Ctx) error {
	return h.action(c, h.models.Switch)
}

// Load loads a model into memory
func (h *ModelsHandler) Load(c *fiber.Ctx) error {
	return h.action(c, h.models.Load)
}

// Unload releases a model
func (h *ModelsHandler) Unload(c *fiber.Ctx) error {
	return h.action(c, h.models.Unload)
}

// Delete removes a model; ?delete_file=true also removes its file
func (h *ModelsHandler) Delete(c *fiber.Ctx) error {
	deleteFile := c.QueryBool("delete_file", false)
	return h.action(c, func(ctx context.Context, id int) error {
		return h.models.Delete(ctx, id, deleteFile)
	})
}

// EditConfig opens the config editor and returns its seed text
func (h *ModelsHandler) EditConfig(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid model id", "ERR_INVALID_ID")
	}
	text, err := h.models.BeginConfigEdit(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views.ConfigEdit{ModelID: id, Text: text})
}

// SaveConfig saves the editor text; the raw body is the config document
func (h *ModelsHandler) SaveConfig(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid model id", "ERR_INVALID_ID")
	}
	if err := h.models.SaveConfig(c.UserContext(), id, string(c.Body())); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.models.Snapshot())
}

// CancelConfig closes the editor
func (h *ModelsHandler) CancelConfig(c *fiber.Ctx) error {
	h.models.CancelConfigEdit()
	return c.JSON(h.models.Snapshot())
}

func (h *ModelsHandler) action(c *fiber.Ctx, fn func(context.Context, int) error) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid model id", "ERR_INVALID_ID")
	}
	if err := fn(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.models.Snapshot())
}
