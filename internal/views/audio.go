package views

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/media"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// AudioState is a point-in-time copy of the audio view
type AudioState struct {
	Files     []types.AudioFile `json:"files"`
	Selected  int               `json:"selected"`
	Pending   []string          `json:"pending"`
	Uploading bool              `json:"uploading"`
}

// AudioManager lists, uploads, deletes and selects audio files
type AudioManager struct {
	api      AudioAPI
	notifier Notifier

	mu        sync.RWMutex
	files     []types.AudioFile
	selected  int
	pending   []api.UploadFile
	uploading bool

	broadcaster
}

// NewAudioManager creates the audio view
func NewAudioManager(audio AudioAPI, notifier Notifier) *AudioManager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AudioManager{api: audio, notifier: notifier, files: []types.AudioFile{}}
}

// Refresh replaces the list with the backend's current audio files
func (m *AudioManager) Refresh(ctx context.Context) error {
	files, err := m.api.List(ctx)
	if err != nil {
		return err
	}
	if files == nil {
		files = []types.AudioFile{}
	}

	m.mu.Lock()
	m.files = files
	m.mu.Unlock()
	m.changed()
	return nil
}

// Select marks one audio file as the current choice; zero clears it
func (m *AudioManager) Select(id int) {
	m.mu.Lock()
	m.selected = id
	m.mu.Unlock()
	m.changed()
}

// SetPending replaces the files queued for the next upload
func (m *AudioManager) SetPending(files []api.UploadFile) {
	m.mu.Lock()
	m.pending = append([]api.UploadFile(nil), files...)
	m.mu.Unlock()
	m.changed()
}

// Upload sends every pending file in one request and refreshes the list.
// With no pending files it does nothing. On failure the pending files are kept.
func (m *AudioManager) Upload(ctx context.Context) ([]api.UploadResult, error) {
	m.mu.Lock()
	if m.uploading {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return nil, nil
	}
	files := m.pending
	m.uploading = true
	m.mu.Unlock()
	m.changed()

	results, err := m.api.Upload(ctx, files)

	m.mu.Lock()
	m.uploading = false
	if err == nil {
		m.pending = nil
	}
	m.mu.Unlock()
	m.changed()

	if err != nil {
		m.notifier.Error("Upload failed: " + api.Detail(err, "upload failed"))
		return nil, err
	}

	log.Printf("Uploaded %d audio file(s)", len(results))
	m.notifier.Success(fmt.Sprintf("Uploaded %d file(s)", len(results)))
	if err := m.Refresh(ctx); err != nil {
		log.Printf("Failed to refresh audio list: %v", err)
	}
	return results, nil
}

// Validate rejects files that are not audio or exceed maxBytes (zero means
// no limit). A rejection is notified and the pending selection is kept.
func (m *AudioManager) Validate(files []api.UploadFile, maxBytes int64) error {
	for _, f := range files {
		var err error
		switch {
		case !media.ValidateAudioFormat(f.Name):
			err = fmt.Errorf("%s: %w", f.Name, ErrUnsupportedAudio)
		case maxBytes > 0 && f.Size > maxBytes:
			err = fmt.Errorf("%s: %w (max %dMB)", f.Name, ErrFileTooLarge, maxBytes>>20)
		}
		if err != nil {
			m.notifier.Error("Upload rejected: " + err.Error())
			return err
		}
	}
	return nil
}

// UploadFiles validates files, queues them and uploads them at once
func (m *AudioManager) UploadFiles(ctx context.Context, files []api.UploadFile, maxBytes int64) ([]api.UploadResult, error) {
	if err := m.Validate(files, maxBytes); err != nil {
		return nil, err
	}
	m.SetPending(files)
	return m.Upload(ctx)
}

// Import uploads files that arrived outside the form (Drive links, the watch
// folder) without touching the pending selection, then refreshes the list
func (m *AudioManager) Import(ctx context.Context, files []api.UploadFile) ([]api.UploadResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	results, err := m.api.Upload(ctx, files)
	if err != nil {
		m.notifier.Error("Import failed: " + api.Detail(err, "upload failed"))
		return nil, err
	}

	m.notifier.Success(fmt.Sprintf("Imported %s", files[0].Name))
	if err := m.Refresh(ctx); err != nil {
		log.Printf("Failed to refresh audio list: %v", err)
	}
	return results, nil
}

// Delete removes an audio file and refreshes the list
func (m *AudioManager) Delete(ctx context.Context, id int) error {
	if err := m.api.Delete(ctx, id); err != nil {
		m.notifier.Error("Delete failed: " + api.Detail(err, "delete failed"))
		return err
	}

	m.mu.Lock()
	if m.selected == id {
		m.selected = 0
	}
	m.mu.Unlock()

	m.notifier.Success("Audio deleted")
	return m.Refresh(ctx)
}

// Snapshot returns a copy of the current state
func (m *AudioManager) Snapshot() AudioState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]types.AudioFile, len(m.files))
	copy(files, m.files)
	pending := make([]string, 0, len(m.pending))
	for _, f := range m.pending {
		pending = append(pending, f.Name)
	}
	return AudioState{
		Files:     files,
		Selected:  m.selected,
		Pending:   pending,
		Uploading: m.uploading,
	}
}
