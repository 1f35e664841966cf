package views

import (
	"context"
	"sync"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

type recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	r.successes = append(r.successes, msg)
	r.mu.Unlock()
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	r.errors = append(r.errors, msg)
	r.mu.Unlock()
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.successes), len(r.errors)
}

type fakeAudio struct {
	mu        sync.Mutex
	files     []types.AudioFile
	uploads   [][]api.UploadFile
	uploadErr error
	deleteErr error
}

func (f *fakeAudio) List(context.Context) ([]types.AudioFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.AudioFile(nil), f.files...), nil
}

func (f *fakeAudio) Upload(_ context.Context, files []api.UploadFile) ([]api.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, files)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	out := make([]api.UploadResult, 0, len(files))
	for _, file := range files {
		id := len(f.files) + 1
		f.files = append(f.files, types.AudioFile{ID: id, Filename: file.Name})
		out = append(out, api.UploadResult{ID: id, Filename: file.Name})
	}
	return out, nil
}

func (f *fakeAudio) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, file := range f.files {
		if file.ID == id {
			f.files = append(f.files[:i], f.files[i+1:]...)
			break
		}
	}
	return nil
}

type fakeTasks struct {
	mu          sync.Mutex
	tasks       []types.ASRTask
	progress    map[int]*types.ASRTask
	text        map[int]string
	submits     []types.TaskSubmission
	progressN   map[int]int
	resultN     map[int]int
	submitErr   error
	deleteErr   error
	resultBlock chan struct{}
	// progressStarted, when set, receives the id of each Progress call,
	// which then waits on progressBlock
	progressStarted chan int
	progressBlock   chan struct{}
}

func newFakeTasks(tasks ...types.ASRTask) *fakeTasks {
	f := &fakeTasks{
		tasks:     tasks,
		progress:  make(map[int]*types.ASRTask),
		text:      make(map[int]string),
		progressN: make(map[int]int),
		resultN:   make(map[int]int),
	}
	for i := range tasks {
		t := tasks[i]
		f.progress[t.ID] = &t
	}
	return f
}

func (f *fakeTasks) Submit(_ context.Context, audioID int, model string, params map[string]any) (*types.ASRTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if params == nil {
		params = map[string]any{}
	}
	f.submits = append(f.submits, types.TaskSubmission{AudioFileID: audioID, ModelName: model, ModelParams: params})
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	t := types.ASRTask{ID: len(f.tasks) + 100, AudioFileID: audioID, ModelName: model, Status: types.StatusQueued}
	f.tasks = append(f.tasks, t)
	f.progress[t.ID] = &t
	return &t, nil
}

func (f *fakeTasks) List(context.Context) ([]types.ASRTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.ASRTask(nil), f.tasks...), nil
}

func (f *fakeTasks) Progress(_ context.Context, id int) (*types.ASRTask, error) {
	f.mu.Lock()
	f.progressN[id]++
	p, ok := f.progress[id]
	if !ok {
		f.mu.Unlock()
		return nil, &api.Error{StatusCode: 404, Detail: "Task not found"}
	}
	cp := *p
	started, block := f.progressStarted, f.progressBlock
	f.mu.Unlock()

	if block != nil {
		started <- id
		<-block
	}
	return &cp, nil
}

func (f *fakeTasks) Result(ctx context.Context, id int) (*types.ASRResult, error) {
	f.mu.Lock()
	f.resultN[id]++
	block := f.resultBlock
	text := f.text[id]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &types.ASRResult{TaskID: id, RecognizedText: text}, nil
}

func (f *fakeTasks) DeleteTask(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeTasks) set(id int, status string, progress float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress[id] = &types.ASRTask{ID: id, Status: status, Progress: progress}
}

func (f *fakeTasks) calls(id int) (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progressN[id], f.resultN[id]
}

type fakeExports struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeExports) Result(_ context.Context, taskID int, format string) (*api.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, format)
	if f.err != nil {
		return nil, f.err
	}
	return &api.Payload{Data: []byte("result-" + format)}, nil
}
