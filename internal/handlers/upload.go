package handlers

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/views"
)

// AudioHandler serves the audio view
type AudioHandler struct {
	audio     *views.AudioManager
	maxSizeMB int
}

// NewAudioHandler creates a new audio handler
func NewAudioHandler(audio *views.AudioManager, maxSizeMB int) *AudioHandler {
	return &AudioHandler{
		audio:     audio,
		maxSizeMB: maxSizeMB,
	}
}

// List refreshes and returns the audio view
func (h *AudioHandler) List(c *fiber.Ctx) error {
	if err := h.audio.Refresh(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.audio.Snapshot())
}

// Upload forwards every "files" part to the backend in one request
func (h *AudioHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "Invalid multipart form", "ERR_INVALID_BODY")
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		// Nothing selected: nothing to send
		return c.JSON(fiber.Map{"uploaded": []api.UploadResult{}})
	}

	files := make([]api.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, fromFileHeader(fh))
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	results, err := h.audio.UploadFiles(c.UserContext(), files, maxSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"uploaded": results})
}

// Delete removes one audio file
func (h *AudioHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid audio id", "ERR_INVALID_ID")
	}
	if err := h.audio.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.audio.Snapshot())
}

type selectRequest struct {
	ID int `json:"id"`
}

// Select marks the current audio file
func (h *AudioHandler) Select(c *fiber.Ctx) error {
	var req selectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", "ERR_INVALID_BODY")
	}
	h.audio.Select(req.ID)
	return c.JSON(h.audio.Snapshot())
}

func fromFileHeader(fh *multipart.FileHeader) api.UploadFile {
	return api.UploadFile{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}
