package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/codebuildervaibhav/asr-console/internal/api"
)

var (
	// ErrQueueFull is returned when the job buffer is full
	ErrQueueFull = errors.New("import queue is full")
	// ErrStopped is returned after Stop
	ErrStopped = errors.New("import queue is stopped")
)

// Uploader sends audio files to the backend
type Uploader interface {
	Import(ctx context.Context, files []api.UploadFile) ([]api.UploadResult, error)
}

// WorkerPool manages a pool of workers uploading imported audio
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	uploader    Uploader
	maxHistory  int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
	jobs    map[string]*Job
	order   []string
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workerCount, queueSize int, uploader Uploader) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		jobQueue:    make(chan *Job, queueSize),
		workerCount: workerCount,
		uploader:    uploader,
		maxHistory:  200,
		ctx:         ctx,
		cancel:      cancel,
		jobs:        make(map[string]*Job),
	}
}

// Start initializes all workers
func (wp *WorkerPool) Start() {
	log.Printf("Starting import pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop stops accepting jobs, cancels in-flight uploads and waits for workers
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	close(wp.jobQueue)
	wp.mu.Unlock()

	wp.cancel()
	wp.wg.Wait()
}

// EnqueueJob adds a job to the queue without blocking
func (wp *WorkerPool) EnqueueJob(job *Job) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.stopped {
		return ErrStopped
	}

	job.Status = StatusQueued
	job.CreatedAt = time.Now()

	select {
	case wp.jobQueue <- job:
	default:
		return ErrQueueFull
	}

	wp.jobs[job.ID] = job
	wp.order = append(wp.order, job.ID)
	wp.trimLocked()

	log.Printf("Job %s enqueued (source: %s, name: %s)", job.ID, job.SourceType, job.Name)
	return nil
}

// trimLocked drops the oldest finished jobs beyond maxHistory
func (wp *WorkerPool) trimLocked() {
	for len(wp.order) > wp.maxHistory {
		oldest := wp.jobs[wp.order[0]]
		if oldest != nil && (oldest.Status == StatusQueued || oldest.Status == StatusUploading) {
			return
		}
		delete(wp.jobs, wp.order[0])
		wp.order = wp.order[1:]
	}
}

// Jobs returns copies of the known jobs, newest first
func (wp *WorkerPool) Jobs() []Job {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	out := make([]Job, 0, len(wp.jobs))
	for _, id := range wp.order {
		if j, ok := wp.jobs[id]; ok {
			out = append(out, *j)
		}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out
}

// Job returns a copy of one job
func (wp *WorkerPool) Job(id string) (Job, bool) {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	j, ok := wp.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

func (wp *WorkerPool) update(job *Job, fn func(*Job)) {
	wp.mu.Lock()
	fn(job)
	wp.mu.Unlock()
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	log.Printf("Worker %d started", id)

	for job := range wp.jobQueue {
		// Panic recovery
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Worker %d: PANIC processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					wp.fail(job, fmt.Errorf("worker panic: %v", r))
					cleanupTempFile(job.FilePath)
				}
			}()

			wp.processJob(id, job)
		}()
	}
}

// processJob uploads one staged file and removes it
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	defer cleanupTempFile(job.FilePath)

	if err := wp.ctx.Err(); err != nil {
		wp.fail(job, err)
		return
	}

	log.Printf("Worker %d: Uploading job %s (%s)", workerID, job.ID, job.Name)
	wp.update(job, func(j *Job) { j.Status = StatusUploading })

	file := api.FileFromPath(job.FilePath)
	if job.Name != "" {
		file.Name = job.Name
	}

	results, err := wp.uploader.Import(wp.ctx, []api.UploadFile{file})
	if err != nil {
		log.Printf("Worker %d: Upload failed for job %s: %v", workerID, job.ID, err)
		wp.fail(job, err)
		return
	}

	ids := make([]int, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	wp.update(job, func(j *Job) {
		j.Status = StatusCompleted
		j.AudioIDs = ids
		j.FinishedAt = time.Now()
	})
	log.Printf("Worker %d: Job %s completed (audio ids: %v)", workerID, job.ID, ids)
}

func (wp *WorkerPool) fail(job *Job, err error) {
	wp.update(job, func(j *Job) {
		j.Status = StatusFailed
		j.Error = api.Detail(err, err.Error())
		j.FinishedAt = time.Now()
	})
}

// cleanupTempFile removes a staged file
func cleanupTempFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to cleanup temp file %s: %v", filePath, err)
	}
}
