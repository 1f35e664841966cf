package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Set groups the console's handlers
type Set struct {
	Audio         *AudioHandler
	Tasks         *TasksHandler
	Stream        *StreamHandler
	Summary       *SummaryHandler
	History       *HistoryHandler
	Models        *ModelsHandler
	Notifications *NotificationsHandler
	NotifyStream  *NotificationStream
	Imports       *ImportHandler
}

// Register mounts the console API under r. Nil handlers are skipped.
func Register(r fiber.Router, h *Set) {
	if h.Audio != nil {
		r.Get("/audio", h.Audio.List)
		r.Post("/audio/upload", h.Audio.Upload)
		r.Post("/audio/select", h.Audio.Select)
		r.Delete("/audio/:id", h.Audio.Delete)
	}

	if h.Tasks != nil {
		r.Get("/tasks", h.Tasks.List)
		r.Post("/tasks", h.Tasks.Submit)
		r.Delete("/tasks/:id", h.Tasks.Delete)
	}
	if h.Stream != nil {
		r.Use("/tasks/stream", upgradeOnly)
		r.Get("/tasks/stream", websocket.New(h.Stream.Handle))
	}

	if h.Summary != nil {
		r.Get("/summary", h.Summary.Get)
		r.Post("/summary/select", h.Summary.Select)
		r.Post("/summary/options", h.Summary.Options)
		r.Post("/summary/generate", h.Summary.Generate)
		r.Get("/summary/export", h.Summary.Export)
		r.Get("/summary/llm", h.Summary.GetLLM)
		r.Put("/summary/llm", h.Summary.SaveLLM)
		r.Post("/summary/llm/verify", h.Summary.VerifyLLM)
	}

	if h.History != nil {
		r.Get("/history", h.History.Get)
		r.Delete("/history/tasks/:id", h.History.DeleteTask)
		r.Delete("/history/results/:id", h.History.DeleteResult)
		r.Post("/history/tasks/delete", h.History.BulkDeleteTasks)
		r.Post("/history/results/delete", h.History.BulkDeleteResults)
		r.Get("/history/export/:id", h.History.Export)
		r.Get("/exports", h.History.Exports)
	}

	if h.Models != nil {
		r.Get("/models", h.Models.List)
		r.Post("/models", h.Models.Register)
		r.Post("/models/:id/switch", h.Models.Switch)
		r.Post("/models/:id/load", h.Models.Load)
		r.Post("/models/:id/unload", h.Models.Unload)
		r.Delete("/models/:id", h.Models.Delete)
		r.Get("/models/:id/config", h.Models.EditConfig)
		r.Put("/models/:id/config", h.Models.SaveConfig)
		r.Delete("/models/:id/config", h.Models.CancelConfig)
	}

	if h.Notifications != nil {
		r.Get("/notifications", h.Notifications.List)
	}
	if h.NotifyStream != nil {
		r.Use("/notifications/stream", upgradeOnly)
		r.Get("/notifications/stream", websocket.New(h.NotifyStream.Handle))
	}

	if h.Imports != nil {
		r.Get("/imports", h.Imports.List)
		r.Get("/imports/:id", h.Imports.Get)
		r.Post("/imports/upload", h.Imports.Upload)
		r.Post("/imports/gdrive", h.Imports.GDrive)
	}
}

// upgradeOnly rejects plain HTTP requests to WebSocket routes
func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
