package handlers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/asr-console/internal/notify"
	"github.com/codebuildervaibhav/asr-console/internal/views"
)

// StreamHandler pushes live task-view snapshots over a WebSocket. Each
// connection mounts the task view; polling stops when the last one closes.
type StreamHandler struct {
	tasks *views.TaskManager
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(tasks *views.TaskManager) *StreamHandler {
	return &StreamHandler{
		tasks: tasks,
	}
}

type streamMessage struct {
	Type string          `json:"type"`
	Data views.TaskState `json:"data"`
}

// Handle processes WebSocket connections
func (h *StreamHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	changes, cancel := h.tasks.Subscribe()
	defer cancel()

	ctx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	err := h.tasks.Mount(ctx)
	stop()
	defer h.tasks.Unmount()
	if err != nil {
		log.Printf("Task view mount failed: %v", err)
	}

	log.Printf("Task stream connected: %s", c.RemoteAddr())

	// Reader detects the client going away; control messages are ignored
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !h.send(c) {
		return
	}

	for {
		select {
		case <-closed:
			log.Printf("Task stream closed: %s", c.RemoteAddr())
			return
		case <-changes:
			if !h.send(c) {
				return
			}
		}
	}
}

func (h *StreamHandler) send(c *websocket.Conn) bool {
	msg, err := json.Marshal(streamMessage{Type: "tasks", Data: h.tasks.Snapshot()})
	if err != nil {
		log.Printf("Failed to encode task snapshot: %v", err)
		return false
	}
	if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Printf("WebSocket write error: %v", err)
		return false
	}
	return true
}

// NotificationStream pushes every new notification over a WebSocket
type NotificationStream struct {
	center *notify.Center
}

// NewNotificationStream creates a notification stream handler
func NewNotificationStream(center *notify.Center) *NotificationStream {
	return &NotificationStream{center: center}
}

// Handle processes WebSocket connections
func (h *NotificationStream) Handle(c *websocket.Conn) {
	defer c.Close()

	events, cancel := h.center.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case n, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(n); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}
		}
	}
}
