package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/asr-console/internal/types"
	"github.com/codebuildervaibhav/asr-console/internal/views"
)

// SummaryHandler serves the summary/export view
type SummaryHandler struct {
	summary *views.SummaryExport
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summary *views.SummaryExport) *SummaryHandler {
	return &SummaryHandler{summary: summary}
}

// Get reloads finished tasks and saved LLM settings
func (h *SummaryHandler) Get(c *fiber.Ctx) error {
	if err := h.summary.Mount(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.summary.Snapshot())
}

type summarySelectRequest struct {
	TaskID int `json:"task_id"`
}

// Select loads a finished task's text
func (h *SummaryHandler) Select(c *fiber.Ctx) error {
	var req summarySelectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", "ERR_INVALID_BODY")
	}
	if err := h.summary.Select(c.UserContext(), req.TaskID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.summary.Snapshot())
}

type optionsRequest struct {
	Algo   string `json:"algo"`
	Length int    `json:"length"`
	Detail int    `json:"detail"`
}

// Options sets the algorithm, length and detail level
func (h *SummaryHandler) Options(c *fiber.Ctx) error {
	var req optionsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", "ERR_INVALID_BODY")
	}
	if err := h.summary.SetOptions(req.Algo, req.Length, req.Detail); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.summary.Snapshot())
}

// Generate requests a summary of the selected task
func (h *SummaryHandler) Generate(c *fiber.Ctx) error {
	summary, err := h.summary.GenerateSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"summary": summary})
}

// GetLLM returns the saved LLM settings with the key masked
func (h *SummaryHandler) GetLLM(c *fiber.Ctx) error {
	if err := h.summary.LoadLLMConfig(c.UserContext()); err != nil {
		log.Printf("Failed to load LLM config: %v", err)
	}
	return c.JSON(h.summary.Snapshot().LLM)
}

// SaveLLM stores the LLM settings
func (h *SummaryHandler) SaveLLM(c *fiber.Ctx) error {
	var cfg types.LLMConfig
	if err := c.BodyParser(&cfg); err != nil {
		return badRequest(c, "Invalid request body", "ERR_INVALID_BODY")
	}
	if err := h.summary.SaveLLMConfig(c.UserContext(), cfg); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save LLM settings",
			"code":  "ERR_SAVE_FAILED",
		})
	}
	return c.JSON(h.summary.Snapshot().LLM)
}

// VerifyLLM checks the saved LLM settings
func (h *SummaryHandler) VerifyLLM(c *fiber.Ctx) error {
	if err := h.summary.VerifyLLMConfig(c.UserContext()); err != nil {
		if _, ok := lookupError(err); ok {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_LLM_UNAVAILABLE",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Export downloads the selected task's result
func (h *SummaryHandler) Export(c *fiber.Ctx) error {
	a, err := h.summary.Export(c.UserContext(), c.Query("format", types.FormatTXT))
	if err != nil {
		return respondError(c, err)
	}
	return sendArtifact(c, a)
}

func sendArtifact(c *fiber.Ctx, a *types.Artifact) error {
	c.Attachment(a.Name)
	c.Set(fiber.HeaderContentType, a.ContentType)
	return c.Send(a.Data)
}
