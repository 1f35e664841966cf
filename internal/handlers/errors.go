package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/llm"
	"github.com/codebuildervaibhav/asr-console/internal/queue"
	"github.com/codebuildervaibhav/asr-console/internal/storage"
	"github.com/codebuildervaibhav/asr-console/internal/views"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{views.ErrNoSelection, fiber.StatusBadRequest, "ERR_NO_SELECTION"},
	{views.ErrBusy, fiber.StatusConflict, "ERR_BUSY"},
	{views.ErrTaskNotFinished, fiber.StatusConflict, "ERR_TASK_NOT_FINISHED"},
	{views.ErrUnsupportedFormat, fiber.StatusBadRequest, "ERR_INVALID_FORMAT"},
	{views.ErrUnsupportedAlgo, fiber.StatusBadRequest, "ERR_INVALID_ALGO"},
	{views.ErrInvalidConfig, fiber.StatusBadRequest, "ERR_INVALID_CONFIG"},
	{views.ErrInvalidForm, fiber.StatusBadRequest, "ERR_INVALID_FORM"},
	{views.ErrUnknownTab, fiber.StatusBadRequest, "ERR_INVALID_TAB"},
	{views.ErrUnsupportedAudio, fiber.StatusBadRequest, "ERR_INVALID_FORMAT"},
	{views.ErrFileTooLarge, fiber.StatusBadRequest, "ERR_FILE_TOO_LARGE"},
	{views.ErrUnknownModel, fiber.StatusNotFound, "ERR_NOT_FOUND"},
	{llm.ErrMissingKey, fiber.StatusBadRequest, "ERR_NO_API_KEY"},
	{queue.ErrQueueFull, fiber.StatusServiceUnavailable, "ERR_QUEUE_FULL"},
	{queue.ErrStopped, fiber.StatusServiceUnavailable, "ERR_QUEUE_STOPPED"},
	{storage.ErrDriveNotAccessible, fiber.StatusBadRequest, "ERR_FILE_NOT_ACCESSIBLE"},
}

func lookupError(err error) (errorMapping, bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m, true
		}
	}
	return errorMapping{}, false
}

// respondError writes the JSON error body for err
func respondError(c *fiber.Ctx, err error) error {
	if m, ok := lookupError(err); ok {
		return c.Status(m.status).JSON(fiber.Map{
			"error": err.Error(),
			"code":  m.code,
		})
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":          api.Detail(err, "backend request failed"),
			"code":           "ERR_BACKEND",
			"backend_status": apiErr.StatusCode,
		})
	}

	log.Printf("Request %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error": "Backend unavailable",
		"code":  "ERR_BACKEND_UNAVAILABLE",
	})
}

func badRequest(c *fiber.Ctx, msg, code string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"code":  code,
	})
}

// paramID parses a positive integer route parameter
func paramID(c *fiber.Ctx, name string) (int, bool) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ErrorHandler is the app-wide error trap. Panics recovered by the recover
// middleware and unmatched routes end up here.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(code).JSON(fiber.Map{
			"error": "Internal server error",
			"code":  "ERR_INTERNAL",
		})
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  "ERR_HTTP_" + strconv.Itoa(code),
	})
}
