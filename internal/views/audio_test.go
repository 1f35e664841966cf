package views

import (
	"context"
	"errors"
	"testing"

	"github.com/codebuildervaibhav/asr-console/internal/api"
)

// TestUploadZeroFilesIsNoop verifies no request is made without pending files.
func TestUploadZeroFilesIsNoop(t *testing.T) {
	f := &fakeAudio{}
	m := NewAudioManager(f, nil)

	res, err := m.Upload(context.Background())
	if err != nil || res != nil {
		t.Fatalf("Upload() = %v, %v, want nil, nil", res, err)
	}
	if len(f.uploads) != 0 {
		t.Fatalf("uploads = %d, want 0", len(f.uploads))
	}
}

// TestUploadSendsAllPendingAndRefreshes verifies one request carries every file.
func TestUploadSendsAllPendingAndRefreshes(t *testing.T) {
	f := &fakeAudio{}
	rec := &recorder{}
	m := NewAudioManager(f, rec)

	files := []api.UploadFile{
		api.FileFromBytes("a.wav", []byte("a")),
		api.FileFromBytes("b.mp3", []byte("b")),
	}
	if _, err := m.UploadFiles(context.Background(), files, 0); err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
	if len(f.uploads) != 1 || len(f.uploads[0]) != 2 {
		t.Fatalf("uploads = %+v, want one request with 2 files", f.uploads)
	}

	state := m.Snapshot()
	if len(state.Files) != 2 || len(state.Pending) != 0 || state.Uploading {
		t.Fatalf("state = %+v", state)
	}
	if len(rec.successes) != 1 {
		t.Fatalf("successes = %v", rec.successes)
	}
}

// TestUploadFailureKeepsPending verifies failed uploads are surfaced and retryable.
func TestUploadFailureKeepsPending(t *testing.T) {
	f := &fakeAudio{uploadErr: &api.Error{StatusCode: 500}}
	rec := &recorder{}
	m := NewAudioManager(f, rec)

	m.SetPending([]api.UploadFile{api.FileFromBytes("a.wav", []byte("a"))})
	if _, err := m.Upload(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := m.Snapshot().Pending; len(got) != 1 || got[0] != "a.wav" {
		t.Fatalf("pending = %v", got)
	}
	if len(rec.errors) != 1 || rec.errors[0] != "Upload failed: upload failed" {
		t.Fatalf("errors = %v", rec.errors)
	}
}

// TestUploadRejectsInvalidFiles verifies rejected files are notified and never sent.
func TestUploadRejectsInvalidFiles(t *testing.T) {
	f := &fakeAudio{}
	rec := &recorder{}
	m := NewAudioManager(f, rec)
	ctx := context.Background()

	m.SetPending([]api.UploadFile{api.FileFromBytes("keep.wav", []byte("k"))})

	_, err := m.UploadFiles(ctx, []api.UploadFile{api.FileFromBytes("notes.txt", []byte("x"))}, 0)
	if !errors.Is(err, ErrUnsupportedAudio) {
		t.Fatalf("err = %v, want %v", err, ErrUnsupportedAudio)
	}
	_, err = m.UploadFiles(ctx, []api.UploadFile{api.FileFromBytes("big.wav", make([]byte, 2<<20))}, 1<<20)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want %v", err, ErrFileTooLarge)
	}

	if len(f.uploads) != 0 {
		t.Fatalf("uploads = %d, want 0", len(f.uploads))
	}
	if len(rec.errors) != 2 {
		t.Fatalf("errors = %v, want 2", rec.errors)
	}
	if got := m.Snapshot().Pending; len(got) != 1 || got[0] != "keep.wav" {
		t.Fatalf("pending = %v, want [keep.wav]", got)
	}
}

// TestDeleteAudioClearsSelection verifies the deleted file is no longer selected.
func TestDeleteAudioClearsSelection(t *testing.T) {
	f := &fakeAudio{}
	m := NewAudioManager(f, nil)
	ctx := context.Background()
	if _, err := m.UploadFiles(ctx, []api.UploadFile{api.FileFromBytes("a.wav", nil)}, 0); err != nil {
		t.Fatal(err)
	}

	m.Select(1)
	if err := m.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	state := m.Snapshot()
	if state.Selected != 0 || len(state.Files) != 0 {
		t.Fatalf("state = %+v", state)
	}

	f.deleteErr = errors.New("gone")
	if err := m.Delete(ctx, 9); err == nil {
		t.Fatal("expected error")
	}
}
