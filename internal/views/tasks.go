package views

import (
	"context"
	"errors"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// DefaultModelName is submitted when no model is chosen
const DefaultModelName = "whisper"

// TaskOptions configures the task view's polling
type TaskOptions struct {
	Interval       time.Duration
	StopOnTerminal bool
}

// TaskView is one row of the task table with live progress merged in
type TaskView struct {
	ID            int     `json:"id"`
	AudioFileID   int     `json:"audio_file_id"`
	ModelName     string  `json:"model_name"`
	Status        string  `json:"status"`
	Progress      float64 `json:"progress"`
	Percent       float64 `json:"percent"`
	Indeterminate bool    `json:"indeterminate"`
	SubmitTime    string  `json:"submit_time,omitempty"`
	FinishTime    string  `json:"finish_time,omitempty"`
	Text          string  `json:"text,omitempty"`
	HasText       bool    `json:"has_text"`
}

// TaskState is a point-in-time copy of the task view
type TaskState struct {
	Audio      []types.AudioFile `json:"audio"`
	Tasks      []TaskView        `json:"tasks"`
	Submitting bool              `json:"submitting"`
	Polling    bool              `json:"polling"`
}

// TaskManager submits recognition tasks and tracks their progress while mounted
type TaskManager struct {
	tasks          TaskAPI
	deleter        TaskDeleter
	audio          AudioLister
	notifier       Notifier
	stopOnTerminal bool
	poller         *Poller

	lifeMu sync.Mutex

	mu         sync.RWMutex
	mounts     int
	audioFiles []types.AudioFile
	list       []types.ASRTask
	status     map[int]string
	progress   map[int]float64
	texts      map[int]string
	inflight   map[int]bool
	submitting bool

	broadcaster
}

// NewTaskManager creates the task view
func NewTaskManager(tasks TaskAPI, deleter TaskDeleter, audio AudioLister, notifier Notifier, opts TaskOptions) *TaskManager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	m := &TaskManager{
		tasks:          tasks,
		deleter:        deleter,
		audio:          audio,
		notifier:       notifier,
		stopOnTerminal: opts.StopOnTerminal,
		audioFiles:     []types.AudioFile{},
		list:           []types.ASRTask{},
		status:         make(map[int]string),
		progress:       make(map[int]float64),
		texts:          make(map[int]string),
		inflight:       make(map[int]bool),
	}
	m.poller = NewPoller(opts.Interval, m.pollTick)
	return m
}

// Mount loads audio and tasks and starts polling. Mounts are counted, so
// polling continues until every Mount has a matching Unmount.
func (m *TaskManager) Mount(ctx context.Context) error {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	m.mu.Lock()
	m.mounts++
	first := m.mounts == 1
	m.mu.Unlock()

	if first {
		m.poller.Start()
	}
	return errors.Join(m.RefreshAudio(ctx), m.RefreshTasks(ctx))
}

// Unmount releases one Mount; the last one stops polling and waits for in-flight polls
func (m *TaskManager) Unmount() {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	m.mu.Lock()
	if m.mounts == 0 {
		m.mu.Unlock()
		return
	}
	m.mounts--
	last := m.mounts == 0
	m.mu.Unlock()

	if last {
		m.poller.Stop()
		m.changed()
	}
}

// Mounted reports whether any viewer holds the view
func (m *TaskManager) Mounted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mounts > 0
}

// RefreshAudio reloads the audio selector
func (m *TaskManager) RefreshAudio(ctx context.Context) error {
	files, err := m.audio.List(ctx)
	if err != nil {
		return err
	}
	if files == nil {
		files = []types.AudioFile{}
	}
	m.mu.Lock()
	m.audioFiles = files
	m.mu.Unlock()
	m.changed()
	return nil
}

// RefreshTasks reloads the task list and re-arms polling over it
func (m *TaskManager) RefreshTasks(ctx context.Context) error {
	list, err := m.tasks.List(ctx)
	if err != nil {
		return err
	}
	if list == nil {
		list = []types.ASRTask{}
	}

	ids := make([]int, 0, len(list))
	m.mu.Lock()
	m.list = list
	for _, t := range list {
		ids = append(ids, t.ID)
		if _, ok := m.status[t.ID]; !ok {
			m.status[t.ID] = t.Status
		}
	}
	m.mu.Unlock()

	m.poller.Arm(ids)
	m.changed()
	return nil
}

// Submit starts recognition of an audio file. A zero id sends nothing.
func (m *TaskManager) Submit(ctx context.Context, audioFileID int, modelName string) (*types.ASRTask, error) {
	if audioFileID <= 0 {
		return nil, ErrNoSelection
	}
	if modelName == "" {
		modelName = DefaultModelName
	}

	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	m.submitting = true
	m.mu.Unlock()
	m.changed()

	defer func() {
		m.mu.Lock()
		m.submitting = false
		m.mu.Unlock()
		m.changed()
	}()

	task, err := m.tasks.Submit(ctx, audioFileID, modelName, nil)
	if err != nil {
		m.notifier.Error("Submit failed: " + api.Detail(err, "submit failed"))
		return nil, err
	}

	log.Printf("Submitted task %d for audio %d (%s)", task.ID, audioFileID, modelName)
	m.notifier.Success("Task submitted")
	if err := m.RefreshTasks(ctx); err != nil {
		log.Printf("Failed to refresh tasks: %v", err)
	}
	return task, nil
}

// Delete removes a task and refreshes the list
func (m *TaskManager) Delete(ctx context.Context, taskID int) error {
	if err := m.deleter.DeleteTask(ctx, taskID); err != nil {
		m.notifier.Error("Delete failed: " + api.Detail(err, "delete failed"))
		return err
	}

	m.mu.Lock()
	m.list = slices.DeleteFunc(slices.Clone(m.list), func(t types.ASRTask) bool { return t.ID == taskID })
	delete(m.status, taskID)
	delete(m.progress, taskID)
	delete(m.texts, taskID)
	m.mu.Unlock()

	m.notifier.Success("Task deleted")
	return m.RefreshTasks(ctx)
}

func (m *TaskManager) pollTick(ctx context.Context, ids []int) {
	var wg sync.WaitGroup
	for _, id := range ids {
		if m.stopOnTerminal && m.settled(id) {
			continue
		}
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			m.pollOne(ctx, id)
		}(id)
	}
	wg.Wait()
}

// settled reports whether a task needs no further polling
func (m *TaskManager) settled(id int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch m.status[id] {
	case types.StatusFailed:
		return true
	case types.StatusFinished:
		_, ok := m.texts[id]
		return ok
	}
	return false
}

func (m *TaskManager) pollOne(ctx context.Context, id int) {
	p, err := m.tasks.Progress(ctx, id)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Progress poll for task %d failed: %v", id, err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}

	m.mu.Lock()
	if !m.listed(id) {
		// deleted while the poll was in flight
		m.mu.Unlock()
		return
	}
	m.status[id] = p.Status
	m.progress[id] = p.Progress
	_, cached := m.texts[id]
	fetch := p.Status == types.StatusFinished && !cached && !m.inflight[id]
	if fetch {
		m.inflight[id] = true
	}
	m.mu.Unlock()
	m.changed()

	if !fetch {
		return
	}

	res, err := m.tasks.Result(ctx, id)

	m.mu.Lock()
	delete(m.inflight, id)
	if err == nil && ctx.Err() == nil && m.listed(id) {
		m.texts[id] = res.RecognizedText
	}
	m.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Result fetch for task %d failed: %v", id, err)
		}
		return
	}
	m.changed()
}

// listed reports whether id is in the current task list. Callers hold m.mu.
func (m *TaskManager) listed(id int) bool {
	return slices.ContainsFunc(m.list, func(t types.ASRTask) bool { return t.ID == id })
}

// Snapshot returns a copy of the current state
func (m *TaskManager) Snapshot() TaskState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	audio := make([]types.AudioFile, len(m.audioFiles))
	copy(audio, m.audioFiles)

	rows := make([]TaskView, 0, len(m.list))
	for _, t := range m.list {
		status := t.Status
		if s, ok := m.status[t.ID]; ok {
			status = s
		}
		progress := t.Progress
		if p, ok := m.progress[t.ID]; ok {
			progress = p
		}
		text, hasText := m.texts[t.ID]
		rows = append(rows, TaskView{
			ID:            t.ID,
			AudioFileID:   t.AudioFileID,
			ModelName:     t.ModelName,
			Status:        status,
			Progress:      progress,
			Percent:       types.ProgressPercent(progress),
			Indeterminate: status == types.StatusRunning,
			SubmitTime:    t.SubmitTime,
			FinishTime:    t.FinishTime,
			Text:          text,
			HasText:       hasText,
		})
	}

	return TaskState{
		Audio:      audio,
		Tasks:      rows,
		Submitting: m.submitting,
		Polling:    m.poller.Armed(),
	}
}
