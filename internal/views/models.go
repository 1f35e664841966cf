package views

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// registerKey is the busy key for the registration form
const registerKey = -1

// RegisterForm collects the fields of a new model record
type RegisterForm struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	LocalPath   string `json:"local_path"`
	RemoteURL   string `json:"remote_url"`
	Version     string `json:"version"`
	Config      string `json:"config"`
	Size        *int64 `json:"size,omitempty"`
}

// ConfigEdit is the open config editor, if any
type ConfigEdit struct {
	ModelID int    `json:"model_id"`
	Text    string `json:"text"`
}

// ModelState is a point-in-time copy of the model view
type ModelState struct {
	Models      []types.ModelInfo `json:"models"`
	Busy        []int             `json:"busy"`
	Registering bool              `json:"registering"`
	Editing     *ConfigEdit       `json:"editing,omitempty"`
}

// ModelManager manages model records and their lifecycle
type ModelManager struct {
	api      ModelAPI
	notifier Notifier

	mu      sync.RWMutex
	models  []types.ModelInfo
	busy    map[int]bool
	editing *ConfigEdit

	broadcaster
}

// NewModelManager creates the model view
func NewModelManager(models ModelAPI, notifier Notifier) *ModelManager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ModelManager{
		api:      models,
		notifier: notifier,
		models:   []types.ModelInfo{},
		busy:     make(map[int]bool),
	}
}

// Refresh reloads the model table
func (m *ModelManager) Refresh(ctx context.Context) error {
	models, err := m.api.List(ctx)
	if err != nil {
		return err
	}
	if models == nil {
		models = []types.ModelInfo{}
	}
	m.mu.Lock()
	m.models = models
	m.mu.Unlock()
	m.changed()
	return nil
}

// Register submits a new model record. Config text is free-form.
func (m *ModelManager) Register(ctx context.Context, form RegisterForm) error {
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.DisplayName) == "" || strings.TrimSpace(form.Type) == "" {
		m.notifier.Error(ErrInvalidForm.Error())
		return ErrInvalidForm
	}

	reg := types.ModelRegistration{
		Name:        form.Name,
		DisplayName: form.DisplayName,
		Type:        form.Type,
		LocalPath:   form.LocalPath,
		RemoteURL:   form.RemoteURL,
		Version:     form.Version,
		Size:        form.Size,
	}
	if text := strings.TrimSpace(form.Config); text != "" {
		// JSON text is sent structured, anything else as a plain string
		if cfg, err := parseConfig(text); err == nil {
			reg.Config = cfg
		} else {
			reg.Config = text
		}
	}

	return m.run(ctx, registerKey, "Model registered", func(ctx context.Context) (string, error) {
		_, err := m.api.Register(ctx, reg)
		return "", err
	})
}

// Switch makes a model the active one
func (m *ModelManager) Switch(ctx context.Context, id int) error {
	return m.run(ctx, id, "Model switched", func(ctx context.Context) (string, error) {
		return m.api.Switch(ctx, id)
	})
}

// Load loads a model into memory
func (m *ModelManager) Load(ctx context.Context, id int) error {
	return m.run(ctx, id, "Model loaded", func(ctx context.Context) (string, error) {
		return m.api.Load(ctx, id)
	})
}

// Unload releases a model from memory
func (m *ModelManager) Unload(ctx context.Context, id int) error {
	return m.run(ctx, id, "Model unloaded", func(ctx context.Context) (string, error) {
		return m.api.Unload(ctx, id)
	})
}

// Delete removes a model record, and its file when deleteFile is set
func (m *ModelManager) Delete(ctx context.Context, id int, deleteFile bool) error {
	return m.run(ctx, id, "Model deleted", func(ctx context.Context) (string, error) {
		return m.api.Delete(ctx, id, deleteFile)
	})
}

// BeginConfigEdit opens the editor seeded with the model's pretty-printed config
func (m *ModelManager) BeginConfigEdit(id int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, model := range m.models {
		if model.ID != id {
			continue
		}
		text := prettyConfig(model.Config)
		m.editing = &ConfigEdit{ModelID: id, Text: text}
		m.changed()
		return text, nil
	}
	return "", ErrUnknownModel
}

// CancelConfigEdit closes the editor
func (m *ModelManager) CancelConfigEdit() {
	m.mu.Lock()
	m.editing = nil
	m.mu.Unlock()
	m.changed()
}

// SaveConfig parses text and sends exactly one config update. Invalid
// text produces a notification and no request.
func (m *ModelManager) SaveConfig(ctx context.Context, id int, text string) error {
	cfg, err := parseConfig(text)
	if err != nil {
		m.notifier.Error("Config must be valid JSON")
		return ErrInvalidConfig
	}

	err = m.run(ctx, id, "Config saved", func(ctx context.Context) (string, error) {
		_, err := m.api.UpdateConfig(ctx, id, cfg)
		return "", err
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.editing != nil && m.editing.ModelID == id {
		m.editing = nil
	}
	m.mu.Unlock()
	m.changed()
	return nil
}

// run marks key busy for the duration of call, notifies and refetches on success
func (m *ModelManager) run(ctx context.Context, key int, success string, call func(context.Context) (string, error)) error {
	m.mu.Lock()
	if m.busy[key] {
		m.mu.Unlock()
		return ErrBusy
	}
	m.busy[key] = true
	m.mu.Unlock()
	m.changed()

	msg, err := call(ctx)

	m.mu.Lock()
	delete(m.busy, key)
	m.mu.Unlock()
	m.changed()

	if err != nil {
		m.notifier.Error(api.Detail(err, "operation failed"))
		return err
	}

	if msg == "" {
		msg = success
	}
	m.notifier.Success(msg)
	if err := m.Refresh(ctx); err != nil {
		log.Printf("Failed to refresh models: %v", err)
	}
	return nil
}

// Snapshot returns a copy of the current state
func (m *ModelManager) Snapshot() ModelState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	models := make([]types.ModelInfo, len(m.models))
	copy(models, m.models)

	state := ModelState{Models: models, Busy: []int{}}
	for key := range m.busy {
		if key == registerKey {
			state.Registering = true
			continue
		}
		state.Busy = append(state.Busy, key)
	}
	sort.Ints(state.Busy)
	if m.editing != nil {
		edit := *m.editing
		state.Editing = &edit
	}
	return state
}

func parseConfig(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func prettyConfig(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
