package views

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// Summary defaults
const (
	DefaultSummaryLength = 100
	DefaultSummaryDetail = 1
)

// LLMStore persists the doubao credentials
type LLMStore interface {
	LoadLLMConfig(ctx context.Context) (types.LLMConfig, error)
	SaveLLMConfig(ctx context.Context, cfg types.LLMConfig) error
}

// LLMVerifier checks that LLM credentials work
type LLMVerifier interface {
	Verify(ctx context.Context, cfg types.LLMConfig) error
}

// SummaryState is a point-in-time copy of the summary/export view
type SummaryState struct {
	Tasks      []types.ASRTask `json:"tasks"`
	Selected   int             `json:"selected"`
	Text       string          `json:"text"`
	Summary    string          `json:"summary"`
	Algo       string          `json:"algo"`
	Length     int             `json:"length"`
	Detail     int             `json:"detail"`
	Loading    bool            `json:"loading"`
	LLM        types.LLMConfig `json:"llm"`
	Algorithms []string        `json:"algorithms"`
	Formats    []string        `json:"formats"`
}

// SummaryExport shows finished results, generates summaries and exports them
type SummaryExport struct {
	tasks    TaskAPI
	summary  SummaryAPI
	exporter *Exporter
	store    LLMStore
	verifier LLMVerifier
	notifier Notifier

	mu       sync.RWMutex
	finished []types.ASRTask
	selected int
	text     string
	result   string
	algo     string
	length   int
	detail   int
	loading  bool
	llm      types.LLMConfig

	broadcaster
}

// NewSummaryExport creates the summary/export view. store and verifier may be nil.
func NewSummaryExport(tasks TaskAPI, summary SummaryAPI, exporter *Exporter, store LLMStore, verifier LLMVerifier, notifier Notifier) *SummaryExport {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &SummaryExport{
		tasks:    tasks,
		summary:  summary,
		exporter: exporter,
		store:    store,
		verifier: verifier,
		notifier: notifier,
		finished: []types.ASRTask{},
		algo:     types.AlgoTruncate,
		length:   DefaultSummaryLength,
		detail:   DefaultSummaryDetail,
		llm:      types.DefaultLLMConfig(),
	}
}

// Mount loads finished tasks and the saved LLM credentials
func (s *SummaryExport) Mount(ctx context.Context) error {
	if err := s.LoadLLMConfig(ctx); err != nil {
		log.Printf("Failed to load LLM config: %v", err)
	}
	return s.RefreshTasks(ctx)
}

// LoadLLMConfig reads the saved LLM settings into the view
func (s *SummaryExport) LoadLLMConfig(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	cfg, err := s.store.LoadLLMConfig(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.llm = cfg
	s.mu.Unlock()
	s.changed()
	return nil
}

// RefreshTasks reloads the selector with finished tasks only
func (s *SummaryExport) RefreshTasks(ctx context.Context) error {
	list, err := s.tasks.List(ctx)
	if err != nil {
		return err
	}
	finished := make([]types.ASRTask, 0, len(list))
	for _, t := range list {
		if t.Status == types.StatusFinished {
			finished = append(finished, t)
		}
	}

	s.mu.Lock()
	s.finished = finished
	s.mu.Unlock()
	s.changed()
	return nil
}

// Select loads the recognized text of a finished task. Zero clears the selection.
func (s *SummaryExport) Select(ctx context.Context, taskID int) error {
	if taskID == 0 {
		s.mu.Lock()
		s.selected, s.text, s.result = 0, "", ""
		s.mu.Unlock()
		s.changed()
		return nil
	}

	s.mu.RLock()
	ok := false
	for _, t := range s.finished {
		if t.ID == taskID {
			ok = true
			break
		}
	}
	s.mu.RUnlock()
	if !ok {
		return ErrTaskNotFinished
	}

	res, err := s.tasks.Result(ctx, taskID)
	if err != nil {
		s.notifier.Error("Failed to load result: " + api.Detail(err, "request failed"))
		return err
	}

	s.mu.Lock()
	s.selected = taskID
	s.text = res.RecognizedText
	s.result = res.Summary
	s.mu.Unlock()
	s.changed()
	return nil
}

// SetOptions sets the summary algorithm, length and detail level
func (s *SummaryExport) SetOptions(algo string, length, detail int) error {
	if !types.IsSummaryAlgo(algo) {
		return ErrUnsupportedAlgo
	}
	if length <= 0 {
		length = DefaultSummaryLength
	}
	if detail <= 0 {
		detail = DefaultSummaryDetail
	}

	s.mu.Lock()
	s.algo, s.length, s.detail = algo, length, detail
	s.mu.Unlock()
	s.changed()
	return nil
}

// SaveLLMConfig persists the doubao credentials. A masked key keeps the stored one.
func (s *SummaryExport) SaveLLMConfig(ctx context.Context, cfg types.LLMConfig) error {
	s.mu.RLock()
	current := s.llm
	s.mu.RUnlock()

	if cfg.APIKey != "" && cfg.APIKey == types.MaskKey(current.APIKey) {
		cfg.APIKey = current.APIKey
	}
	if cfg.Model == "" {
		cfg.Model = types.DefaultDoubaoModel
	}
	if cfg.APIBase == "" {
		cfg.APIBase = types.DefaultDoubaoAPIBase
	}

	if s.store != nil {
		if err := s.store.SaveLLMConfig(ctx, cfg); err != nil {
			s.notifier.Error("Failed to save LLM settings")
			return err
		}
	}

	s.mu.Lock()
	s.llm = cfg
	s.mu.Unlock()
	s.notifier.Success("LLM settings saved")
	s.changed()
	return nil
}

// VerifyLLMConfig checks the saved credentials against the LLM endpoint
func (s *SummaryExport) VerifyLLMConfig(ctx context.Context) error {
	if s.verifier == nil {
		return nil
	}
	s.mu.RLock()
	cfg := s.llm
	s.mu.RUnlock()

	if err := s.verifier.Verify(ctx, cfg); err != nil {
		s.notifier.Error("LLM check failed: " + err.Error())
		return err
	}
	s.notifier.Success("LLM credentials OK")
	return nil
}

// GenerateSummary requests a summary of the selected task. The saved
// credentials are sent only with the doubao algorithm. On failure the
// previous summary is kept.
func (s *SummaryExport) GenerateSummary(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.selected == 0 {
		s.mu.Unlock()
		return "", ErrNoSelection
	}
	if s.loading {
		s.mu.Unlock()
		return "", ErrBusy
	}
	req := types.SummaryRequest{
		TaskID: s.selected,
		Algo:   s.algo,
		Length: s.length,
		Detail: s.detail,
	}
	if s.algo == types.AlgoDoubao {
		cfg := s.llm
		req.Config = &cfg
	}
	s.loading = true
	s.mu.Unlock()
	s.changed()

	out, err := s.summary.Generate(ctx, req)

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.result = out.Summary
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		s.notifier.Error("Summary failed: " + api.Detail(err, "summary failed"))
		return "", err
	}
	s.notifier.Success(fmt.Sprintf("Summary generated (%s)", req.Algo))
	return out.Summary, nil
}

// Export downloads the selected task's result in format
func (s *SummaryExport) Export(ctx context.Context, format string) (*types.Artifact, error) {
	s.mu.RLock()
	taskID := s.selected
	s.mu.RUnlock()
	if taskID == 0 {
		return nil, ErrNoSelection
	}
	return exportWithNotice(ctx, s.exporter, s.notifier, taskID, format)
}

// Snapshot returns a copy of the current state with the API key masked
func (s *SummaryExport) Snapshot() SummaryState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]types.ASRTask, len(s.finished))
	copy(tasks, s.finished)
	llm := s.llm
	llm.APIKey = types.MaskKey(llm.APIKey)

	return SummaryState{
		Tasks:      tasks,
		Selected:   s.selected,
		Text:       s.text,
		Summary:    s.result,
		Algo:       s.algo,
		Length:     s.length,
		Detail:     s.detail,
		Loading:    s.loading,
		LLM:        llm,
		Algorithms: []string{types.AlgoTruncate, types.AlgoDoubao},
		Formats:    types.ExportFormats(),
	}
}

func exportWithNotice(ctx context.Context, e *Exporter, n Notifier, taskID int, format string) (*types.Artifact, error) {
	a, err := e.Export(ctx, taskID, format)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			n.Error("Unsupported export format: " + format)
		} else {
			n.Error("Export failed: " + api.Detail(err, "export failed"))
		}
		return nil, err
	}
	n.Success("Exported " + a.Name)
	return a, nil
}
