package views

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

const testInterval = 10 * time.Millisecond

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestTaskManager(f *fakeTasks, n Notifier, stopOnTerminal bool) *TaskManager {
	return NewTaskManager(f, f, &fakeAudio{}, n, TaskOptions{Interval: testInterval, StopOnTerminal: stopOnTerminal})
}

// TestSubmitWithoutSelectionSendsNothing verifies the client-side guard.
func TestSubmitWithoutSelectionSendsNothing(t *testing.T) {
	f := newFakeTasks()
	m := newTestTaskManager(f, nil, true)

	if _, err := m.Submit(context.Background(), 0, "whisper"); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("err = %v, want ErrNoSelection", err)
	}
	if len(f.submits) != 0 {
		t.Fatalf("submits = %d, want 0", len(f.submits))
	}
	if got := m.Snapshot().Tasks; len(got) != 0 {
		t.Fatalf("tasks = %+v, want empty", got)
	}
}

// TestSubmitRefetchesList verifies one submit request and the refreshed list.
func TestSubmitRefetchesList(t *testing.T) {
	f := newFakeTasks()
	rec := &recorder{}
	m := newTestTaskManager(f, rec, true)

	task, err := m.Submit(context.Background(), 7, "whisper")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := []types.TaskSubmission{{AudioFileID: 7, ModelName: "whisper", ModelParams: map[string]any{}}}
	if !reflect.DeepEqual(f.submits, want) {
		t.Fatalf("submits = %+v, want %+v", f.submits, want)
	}

	state := m.Snapshot()
	if len(state.Tasks) != 1 || state.Tasks[0].ID != task.ID {
		t.Fatalf("tasks = %+v, want new task %d", state.Tasks, task.ID)
	}
	if state.Submitting {
		t.Fatal("still submitting after completion")
	}
}

// TestSubmitFailureNotifies verifies backend rejection surfaces its detail.
func TestSubmitFailureNotifies(t *testing.T) {
	f := newFakeTasks()
	f.submitErr = &api.Error{StatusCode: 404, Detail: "Audio file not found"}
	rec := &recorder{}
	m := newTestTaskManager(f, rec, true)

	if _, err := m.Submit(context.Background(), 3, ""); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.errors) != 1 || rec.errors[0] != "Submit failed: Audio file not found" {
		t.Fatalf("errors = %v", rec.errors)
	}
	if f.submits[0].ModelName != DefaultModelName {
		t.Fatalf("model = %q, want %q", f.submits[0].ModelName, DefaultModelName)
	}
}

// TestDeleteNotifies verifies success and failure notifications for task deletion.
func TestDeleteNotifies(t *testing.T) {
	f := newFakeTasks(types.ASRTask{ID: 1, Status: types.StatusPending}, types.ASRTask{ID: 2, Status: types.StatusPending})
	rec := &recorder{}
	m := newTestTaskManager(f, rec, true)
	ctx := context.Background()
	if err := m.RefreshTasks(ctx); err != nil {
		t.Fatal(err)
	}

	if err := m.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := m.Snapshot().Tasks; len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("tasks after delete = %+v", got)
	}

	f.deleteErr = errors.New("boom")
	if err := m.Delete(ctx, 2); err == nil {
		t.Fatal("expected error")
	}
	if got := m.Snapshot().Tasks; len(got) != 1 {
		t.Fatalf("failed delete changed list: %+v", got)
	}
	if s, e := rec.counts(); s != 1 || e != 1 {
		t.Fatalf("notifications = %d ok / %d err, want 1/1", s, e)
	}
}

// TestDeleteDropsInflightPoll verifies a poll answered after Delete does not restore the task.
func TestDeleteDropsInflightPoll(t *testing.T) {
	f := newFakeTasks(types.ASRTask{ID: 5, Status: types.StatusRunning})
	m := newTestTaskManager(f, nil, true)
	ctx := context.Background()
	if err := m.RefreshTasks(ctx); err != nil {
		t.Fatal(err)
	}

	f.mu.Lock()
	f.progressStarted = make(chan int, 1)
	f.progressBlock = make(chan struct{})
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.pollOne(ctx, 5)
		close(done)
	}()
	<-f.progressStarted

	if err := m.Delete(ctx, 5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	close(f.progressBlock)
	<-done

	m.mu.RLock()
	_, hasStatus := m.status[5]
	_, hasProgress := m.progress[5]
	m.mu.RUnlock()
	if hasStatus || hasProgress {
		t.Fatalf("status present = %v, progress present = %v, want both false", hasStatus, hasProgress)
	}
}

// TestPollFetchesResultOnce verifies a finished task fetches its text once.
func TestPollFetchesResultOnce(t *testing.T) {
	f := newFakeTasks(types.ASRTask{ID: 1, Status: types.StatusRunning})
	f.text[1] = "hello world"
	m := newTestTaskManager(f, nil, false)

	if err := m.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer m.Unmount()

	waitFor(t, "running status", func() bool {
		p, _ := f.calls(1)
		return p > 0
	})
	if row := m.Snapshot().Tasks[0]; !row.Indeterminate {
		t.Fatalf("running row not indeterminate: %+v", row)
	}

	f.set(1, types.StatusFinished, 1.0)
	waitFor(t, "recognized text", func() bool {
		return m.Snapshot().Tasks[0].HasText
	})

	before, _ := f.calls(1)
	waitFor(t, "more ticks", func() bool {
		p, _ := f.calls(1)
		return p >= before+3
	})
	if _, r := f.calls(1); r != 1 {
		t.Fatalf("result fetches = %d, want 1", r)
	}

	row := m.Snapshot().Tasks[0]
	if row.Text != "hello world" || row.Status != types.StatusFinished || row.Percent != 100 || row.Indeterminate {
		t.Fatalf("row = %+v", row)
	}
}

// TestPollDoesNotDuplicateInflightResult verifies overlapping ticks share one result fetch.
func TestPollDoesNotDuplicateInflightResult(t *testing.T) {
	f := newFakeTasks(types.ASRTask{ID: 4, Status: types.StatusFinished})
	f.resultBlock = make(chan struct{})
	m := newTestTaskManager(f, nil, false)

	if err := m.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer m.Unmount()

	waitFor(t, "overlapping ticks", func() bool {
		p, _ := f.calls(4)
		return p >= 4
	})
	if _, r := f.calls(4); r != 1 {
		t.Fatalf("result fetches while in flight = %d, want 1", r)
	}
	close(f.resultBlock)
	waitFor(t, "text cached", func() bool { return m.Snapshot().Tasks[0].HasText })
}

// TestPollStopsForTerminalTasks verifies settled tasks are no longer polled.
func TestPollStopsForTerminalTasks(t *testing.T) {
	f := newFakeTasks(
		types.ASRTask{ID: 1, Status: types.StatusFailed},
		types.ASRTask{ID: 2, Status: types.StatusRunning},
	)
	m := newTestTaskManager(f, nil, true)

	if err := m.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer m.Unmount()

	waitFor(t, "running task polled", func() bool {
		p, _ := f.calls(2)
		return p >= 5
	})
	if p, _ := f.calls(1); p != 0 {
		t.Fatalf("failed task polled %d times, want 0", p)
	}
}

// TestUnmountStopsPolling verifies no requests are issued after the last viewer leaves.
func TestUnmountStopsPolling(t *testing.T) {
	f := newFakeTasks(types.ASRTask{ID: 1, Status: types.StatusRunning})
	m := newTestTaskManager(f, nil, true)
	ctx := context.Background()

	if err := m.Mount(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Mount(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "first poll", func() bool {
		p, _ := f.calls(1)
		return p > 0
	})

	m.Unmount()
	if !m.Snapshot().Polling {
		t.Fatal("polling stopped while a viewer remains")
	}

	m.Unmount()
	if m.Snapshot().Polling || m.Mounted() {
		t.Fatal("still polling after last unmount")
	}
	stopped, _ := f.calls(1)
	time.Sleep(5 * testInterval)
	if p, _ := f.calls(1); p != stopped {
		t.Fatalf("polls after unmount: %d -> %d", stopped, p)
	}

	m.Unmount()
}

// TestNoTasksNoPolling verifies an empty list issues no progress requests.
func TestNoTasksNoPolling(t *testing.T) {
	f := newFakeTasks()
	m := newTestTaskManager(f, nil, true)
	if err := m.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer m.Unmount()

	if m.Snapshot().Polling {
		t.Fatal("armed with no tasks")
	}
}
