package queue

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/codebuildervaibhav/asr-console/internal/api"
)

type fakeUploader struct {
	mu    sync.Mutex
	names []string
	data  []string
	err   error
}

func (f *fakeUploader) Import(_ context.Context, files []api.UploadFile) ([]api.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]api.UploadResult, 0, len(files))
	for _, file := range files {
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		f.names = append(f.names, file.Name)
		f.data = append(f.data, string(b))
		out = append(out, api.UploadResult{ID: len(f.names), Filename: file.Name})
	}
	return out, nil
}

func stage(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staged.bin")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitStatus(t *testing.T, wp *WorkerPool, id, status string) Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if j, ok := wp.Job(id); ok && j.Status == status {
			return j
		}
		time.Sleep(5 * time.Millisecond)
	}
	j, _ := wp.Job(id)
	t.Fatalf("job %s status = %q, want %q", id, j.Status, status)
	return j
}

// TestWorkerUploadsAndCleansUp verifies a staged file is uploaded under its job name and removed.
func TestWorkerUploadsAndCleansUp(t *testing.T) {
	up := &fakeUploader{}
	wp := NewWorkerPool(2, 4, up)
	wp.Start()
	defer wp.Stop()

	path := stage(t, "RIFF")
	if err := wp.EnqueueJob(NewJob("j1", "meeting.wav", "gdrive", path)); err != nil {
		t.Fatal(err)
	}

	j := waitStatus(t, wp, "j1", StatusCompleted)
	if len(j.AudioIDs) != 1 || j.AudioIDs[0] != 1 {
		t.Fatalf("audio ids = %v", j.AudioIDs)
	}
	if up.names[0] != "meeting.wav" || up.data[0] != "RIFF" {
		t.Fatalf("uploaded %v %v", up.names, up.data)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("staged file still present: %v", err)
	}
}

// TestWorkerRecordsFailure verifies backend detail is kept on the job.
func TestWorkerRecordsFailure(t *testing.T) {
	up := &fakeUploader{err: &api.Error{StatusCode: 400, Detail: "unsupported format"}}
	wp := NewWorkerPool(1, 1, up)
	wp.Start()
	defer wp.Stop()

	if err := wp.EnqueueJob(NewJob("j2", "a.wav", "watch", stage(t, "x"))); err != nil {
		t.Fatal(err)
	}
	j := waitStatus(t, wp, "j2", StatusFailed)
	if j.Error != "unsupported format" {
		t.Fatalf("error = %q", j.Error)
	}
}

// TestEnqueueFullAndStopped verifies the queue never blocks callers.
func TestEnqueueFullAndStopped(t *testing.T) {
	wp := NewWorkerPool(1, 1, &fakeUploader{})

	if err := wp.EnqueueJob(NewJob("a", "a.wav", "upload", "")); err != nil {
		t.Fatal(err)
	}
	if err := wp.EnqueueJob(NewJob("b", "b.wav", "upload", "")); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	if got := wp.Jobs(); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("jobs = %+v", got)
	}

	wp.Stop()
	if err := wp.EnqueueJob(NewJob("c", "c.wav", "upload", "")); !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
}
