// Package views holds the console's per-view state controllers. Each view
// owns its state exclusively and reaches the backend only through the small
// interfaces below, which the api services satisfy.
package views

import (
	"context"
	"errors"
	"sync"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

var (
	// ErrNoSelection is returned when an action needs a selected audio file or task
	ErrNoSelection = errors.New("nothing selected")
	// ErrBusy is returned while the same action is already in flight
	ErrBusy = errors.New("action already in progress")
	// ErrTaskNotFinished is returned when selecting a task that has no result yet
	ErrTaskNotFinished = errors.New("task is not finished")
	// ErrUnsupportedFormat is returned for export formats outside txt/json/srt
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrUnsupportedAlgo is returned for unknown summary algorithms
	ErrUnsupportedAlgo = errors.New("unsupported summary algorithm")
	// ErrInvalidConfig is returned when model config text is not valid JSON
	ErrInvalidConfig = errors.New("config is not valid JSON")
	// ErrInvalidForm is returned when a required registration field is empty
	ErrInvalidForm = errors.New("name, display name and type are required")
	// ErrUnknownModel is returned when a model id is not in the table
	ErrUnknownModel = errors.New("unknown model")
	// ErrUnknownTab is returned for history tabs other than tasks/results
	ErrUnknownTab = errors.New("unknown history tab")
	// ErrUnsupportedAudio is returned for upload files without an audio extension
	ErrUnsupportedAudio = errors.New("unsupported audio format")
	// ErrFileTooLarge is returned for upload files over the size limit
	ErrFileTooLarge = errors.New("file is too large")
)

// Notifier receives transient operator notifications
type Notifier interface {
	Success(message string)
	Error(message string)
}

// NopNotifier discards notifications
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// AudioAPI is the audio resource family
type AudioAPI interface {
	List(ctx context.Context) ([]types.AudioFile, error)
	Upload(ctx context.Context, files []api.UploadFile) ([]api.UploadResult, error)
	Delete(ctx context.Context, id int) error
}

// AudioLister lists uploaded audio
type AudioLister interface {
	List(ctx context.Context) ([]types.AudioFile, error)
}

// TaskAPI is the ASR task resource family
type TaskAPI interface {
	Submit(ctx context.Context, audioFileID int, modelName string, params map[string]any) (*types.ASRTask, error)
	List(ctx context.Context) ([]types.ASRTask, error)
	Progress(ctx context.Context, taskID int) (*types.ASRTask, error)
	Result(ctx context.Context, taskID int) (*types.ASRResult, error)
}

// TaskDeleter deletes tasks
type TaskDeleter interface {
	DeleteTask(ctx context.Context, taskID int) error
}

// HistoryAPI is the history resource family
type HistoryAPI interface {
	Tasks(ctx context.Context) ([]types.ASRTask, error)
	Results(ctx context.Context) ([]types.ASRResult, error)
	DeleteTask(ctx context.Context, taskID int) error
	DeleteResult(ctx context.Context, resultID int) error
}

// SummaryAPI generates summaries
type SummaryAPI interface {
	Generate(ctx context.Context, req types.SummaryRequest) (*types.SummaryOut, error)
}

// ExportAPI downloads export payloads
type ExportAPI interface {
	Result(ctx context.Context, taskID int, format string) (*api.Payload, error)
}

// ModelAPI is the model resource family
type ModelAPI interface {
	List(ctx context.Context) ([]types.ModelInfo, error)
	Register(ctx context.Context, reg types.ModelRegistration) (*types.ModelInfo, error)
	Switch(ctx context.Context, id int) (string, error)
	Delete(ctx context.Context, id int, deleteFile bool) (string, error)
	UpdateConfig(ctx context.Context, id int, config any) (*types.ModelInfo, error)
	Load(ctx context.Context, id int) (string, error)
	Unload(ctx context.Context, id int) (string, error)
}

// broadcaster delivers coalesced change signals to subscribers
type broadcaster struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

// Subscribe returns a channel signalled after every state change and a cancel func
func (b *broadcaster) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[chan struct{}]struct{})
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
		})
	}
}

func (b *broadcaster) changed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
