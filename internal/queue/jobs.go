package queue

import (
	"time"
)

// Job statuses
const (
	StatusQueued    = "queued"
	StatusUploading = "uploading"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job represents one audio file waiting to be uploaded to the backend
type Job struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourceType string    `json:"source_type"`
	FilePath   string    `json:"-"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	AudioIDs   []int     `json:"audio_ids,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// NewJob creates a new job with default values
func NewJob(id, name, sourceType, filePath string) *Job {
	return &Job{
		ID:         id,
		Name:       name,
		SourceType: sourceType,
		FilePath:   filePath,
		Status:     StatusQueued,
		CreatedAt:  time.Now(),
	}
}
