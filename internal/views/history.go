package views

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// History tabs
const (
	TabTasks   = "tasks"
	TabResults = "results"
)

// HistoryState is a point-in-time copy of the history view
type HistoryState struct {
	Tab     string            `json:"tab"`
	Tasks   []types.ASRTask   `json:"tasks"`
	Results []types.ASRResult `json:"results"`
	Formats []string          `json:"formats"`
}

// HistoryManager lists, deletes and exports past tasks and results
type HistoryManager struct {
	api      HistoryAPI
	exporter *Exporter
	notifier Notifier

	mu      sync.RWMutex
	tab     string
	tasks   []types.ASRTask
	results []types.ASRResult

	broadcaster
}

// NewHistoryManager creates the history view
func NewHistoryManager(history HistoryAPI, exporter *Exporter, notifier Notifier) *HistoryManager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &HistoryManager{
		api:      history,
		exporter: exporter,
		notifier: notifier,
		tab:      TabTasks,
		tasks:    []types.ASRTask{},
		results:  []types.ASRResult{},
	}
}

// Mount loads both tabs
func (h *HistoryManager) Mount(ctx context.Context) error {
	return errors.Join(h.RefreshTasks(ctx), h.RefreshResults(ctx))
}

// SetTab switches between the tasks and results tabs
func (h *HistoryManager) SetTab(tab string) error {
	if tab != TabTasks && tab != TabResults {
		return ErrUnknownTab
	}
	h.mu.Lock()
	h.tab = tab
	h.mu.Unlock()
	h.changed()
	return nil
}

// RefreshTasks reloads the tasks tab
func (h *HistoryManager) RefreshTasks(ctx context.Context) error {
	tasks, err := h.api.Tasks(ctx)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []types.ASRTask{}
	}
	h.mu.Lock()
	h.tasks = tasks
	h.mu.Unlock()
	h.changed()
	return nil
}

// RefreshResults reloads the results tab
func (h *HistoryManager) RefreshResults(ctx context.Context) error {
	results, err := h.api.Results(ctx)
	if err != nil {
		return err
	}
	if results == nil {
		results = []types.ASRResult{}
	}
	h.mu.Lock()
	h.results = results
	h.mu.Unlock()
	h.changed()
	return nil
}

// DeleteTask removes one task and reloads the tasks tab
func (h *HistoryManager) DeleteTask(ctx context.Context, taskID int) error {
	if err := h.api.DeleteTask(ctx, taskID); err != nil {
		h.notifier.Error("Delete failed: " + api.Detail(err, "delete failed"))
		return err
	}
	h.notifier.Success("Task deleted")
	return h.RefreshTasks(ctx)
}

// DeleteResult removes one result and reloads the results tab
func (h *HistoryManager) DeleteResult(ctx context.Context, resultID int) error {
	if err := h.api.DeleteResult(ctx, resultID); err != nil {
		h.notifier.Error("Delete failed: " + api.Detail(err, "delete failed"))
		return err
	}
	h.notifier.Success("Result deleted")
	return h.RefreshResults(ctx)
}

// DeleteTasks removes several tasks, reloads once and sends one summary notification
func (h *HistoryManager) DeleteTasks(ctx context.Context, ids []int) (int, error) {
	n, err := h.bulk(ctx, ids, "task", h.api.DeleteTask)
	if rerr := h.RefreshTasks(ctx); rerr != nil {
		log.Printf("Failed to refresh task history: %v", rerr)
	}
	return n, err
}

// DeleteResults removes several results, reloads once and sends one summary notification
func (h *HistoryManager) DeleteResults(ctx context.Context, ids []int) (int, error) {
	n, err := h.bulk(ctx, ids, "result", h.api.DeleteResult)
	if rerr := h.RefreshResults(ctx); rerr != nil {
		log.Printf("Failed to refresh result history: %v", rerr)
	}
	return n, err
}

func (h *HistoryManager) bulk(ctx context.Context, ids []int, noun string, del func(context.Context, int) error) (int, error) {
	if len(ids) == 0 {
		return 0, ErrNoSelection
	}

	var errs []error
	var failed []string
	deleted := 0
	for _, id := range ids {
		if err := del(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("%s %d: %w", noun, id, err))
			failed = append(failed, fmt.Sprintf("%d", id))
			continue
		}
		deleted++
	}

	if len(errs) > 0 {
		h.notifier.Error(fmt.Sprintf("Deleted %d of %d %ss; failed: %s", deleted, len(ids), noun, strings.Join(failed, ", ")))
		return deleted, errors.Join(errs...)
	}
	h.notifier.Success(fmt.Sprintf("Deleted %d %ss", deleted, noun))
	return deleted, nil
}

// Export downloads a past task's result in format
func (h *HistoryManager) Export(ctx context.Context, taskID int, format string) (*types.Artifact, error) {
	return exportWithNotice(ctx, h.exporter, h.notifier, taskID, format)
}

// Snapshot returns a copy of the current state
func (h *HistoryManager) Snapshot() HistoryState {
	h.mu.RLock()
	defer h.mu.RUnlock()

	tasks := make([]types.ASRTask, len(h.tasks))
	copy(tasks, h.tasks)
	results := make([]types.ASRResult, len(h.results))
	copy(results, h.results)

	return HistoryState{
		Tab:     h.tab,
		Tasks:   tasks,
		Results: results,
		Formats: types.ExportFormats(),
	}
}
