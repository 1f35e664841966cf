// Package watch imports audio files dropped into a folder.
package watch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/asr-console/internal/media"
	"github.com/codebuildervaibhav/asr-console/internal/queue"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// DefaultSettle is how long a file must stay unchanged before import
const DefaultSettle = 2 * time.Second

// Enqueuer accepts import jobs
type Enqueuer interface {
	EnqueueJob(job *queue.Job) error
}

// Watcher moves settled audio files from dir into the staging directory
// and enqueues them for upload
type Watcher struct {
	dir        string
	stagingDir string
	settle     time.Duration
	queue      Enqueuer

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher over dir
func New(dir, stagingDir string, settle time.Duration, q Enqueuer) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:        dir,
		stagingDir: stagingDir,
		settle:     settle,
		queue:      q,
		pending:    make(map[string]*time.Timer),
	}
}

// Run imports files already present, then watches until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create watch directory: %v", err)
	}
	if err := os.MkdirAll(w.stagingDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %v", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %v", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Printf("Failed to close watcher: %v", err)
		}
	}()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %v", w.dir, err)
	}
	log.Printf("Watching %s for audio files", w.dir)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read watch directory: %v", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.schedule(filepath.Join(w.dir, e.Name()))
		}
	}

	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.schedule(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// schedule (re)starts the settle timer for path
func (w *Watcher) schedule(path string) {
	if !media.ValidateAudioFormat(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingest(path)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// ingest moves path into staging and enqueues it
func (w *Watcher) ingest(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	jobID := uuid.New().String()
	name := filepath.Base(path)
	staged := filepath.Join(w.stagingDir, jobID+filepath.Ext(name))

	if err := moveFile(path, staged); err != nil {
		log.Printf("Failed to stage %s: %v", name, err)
		return
	}

	if err := w.queue.EnqueueJob(queue.NewJob(jobID, name, types.SourceWatch, staged)); err != nil {
		log.Printf("Failed to enqueue %s: %v", name, err)
		// Put it back so the next event retries
		if err := moveFile(staged, path); err != nil {
			log.Printf("Failed to restore %s: %v", name, err)
		}
	}
}

// moveFile renames src to dst, copying when they are on different devices
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
