package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Task status values reported by the backend
const (
	StatusPending  = "pending"
	StatusQueued   = "queued"
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Summary algorithm values accepted by /summary/generate
const (
	AlgoTruncate = "truncate"
	AlgoDoubao   = "doubao"
)

// Export format values accepted by /export/result
const (
	FormatTXT  = "txt"
	FormatJSON = "json"
	FormatSRT  = "srt"
)

// Import source constants
const (
	SourceUpload = "upload"
	SourceGDrive = "gdrive"
	SourceWatch  = "watch"
)

// Defaults for the doubao summary algorithm
const (
	DefaultDoubaoModel   = "doubao-1.6-chat"
	DefaultDoubaoAPIBase = "https://ark.cn-beijing.volces.com/api/v3"
)

// IsTerminalStatus reports whether the backend will no longer change a task
func IsTerminalStatus(status string) bool {
	return status == StatusFinished || status == StatusFailed
}

// ExportFormats lists the formats the console offers, in display order
func ExportFormats() []string {
	return []string{FormatTXT, FormatJSON, FormatSRT}
}

// IsExportFormat reports whether format is one of ExportFormats
func IsExportFormat(format string) bool {
	for _, f := range ExportFormats() {
		if f == format {
			return true
		}
	}
	return false
}

// IsSummaryAlgo reports whether algo is a selectable summary algorithm
func IsSummaryAlgo(algo string) bool {
	return algo == AlgoTruncate || algo == AlgoDoubao
}

// ProgressPercent maps a backend progress value onto 0-100.
// The backend reports either a 0.0-1.0 fraction or a percentage.
func ProgressPercent(progress float64) float64 {
	switch {
	case progress <= 0:
		return 0
	case progress <= 1:
		return progress * 100
	case progress >= 100:
		return 100
	default:
		return progress
	}
}

// AudioFile is an uploaded audio record
type AudioFile struct {
	ID         int      `json:"id"`
	Filename   string   `json:"filename"`
	Filepath   string   `json:"filepath"`
	UploadTime string   `json:"upload_time,omitempty"`
	Duration   *float64 `json:"duration,omitempty"`
	Samplerate *int     `json:"samplerate,omitempty"`
}

// ASRTask is one submitted recognition job
type ASRTask struct {
	ID          int     `json:"id"`
	AudioFileID int     `json:"audio_file_id"`
	ModelName   string  `json:"model_name"`
	ModelParams string  `json:"model_params,omitempty"`
	Status      string  `json:"status"`
	Progress    float64 `json:"progress"`
	SubmitTime  string  `json:"submit_time,omitempty"`
	FinishTime  string  `json:"finish_time,omitempty"`
}

// TaskSubmission is the body of POST /asr/submit
type TaskSubmission struct {
	AudioFileID int            `json:"audio_file_id"`
	ModelName   string         `json:"model_name"`
	ModelParams map[string]any `json:"model_params"`
}

// ASRResult is the recognized text and summary of a finished task
type ASRResult struct {
	ID             int    `json:"id"`
	TaskID         int    `json:"task_id"`
	RecognizedText string `json:"recognized_text"`
	Summary        string `json:"summary"`
	SummaryAlgo    string `json:"summary_algo"`
	ExportFormats  string `json:"export_formats,omitempty"`
	CreateTime     string `json:"create_time,omitempty"`
}

// LLMConfig holds the credentials for the doubao summary algorithm.
// It is a client-local preference, never a backend entity.
type LLMConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	APIBase string `json:"api_base"`
}

// DefaultLLMConfig returns the preference used before anything is saved
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:   DefaultDoubaoModel,
		APIBase: DefaultDoubaoAPIBase,
	}
}

// SummaryRequest is the body of POST /summary/generate
type SummaryRequest struct {
	TaskID int        `json:"task_id"`
	Algo   string     `json:"algo"`
	Length int        `json:"length"`
	Detail int        `json:"detail"`
	Config *LLMConfig `json:"config,omitempty"`
}

// SummaryOut is the response of POST /summary/generate
type SummaryOut struct {
	Summary string `json:"summary"`
	Algo    string `json:"algo"`
	Length  int    `json:"length"`
	Detail  int    `json:"detail"`
}

// ModelInfo is a model record managed by the backend
type ModelInfo struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	LocalPath   string          `json:"local_path,omitempty"`
	Config      json.RawMessage `json:"config,omitempty"`
	Version     string          `json:"version,omitempty"`
	Size        *int64          `json:"size,omitempty"`
	CreateTime  string          `json:"create_time,omitempty"`
	UpdateTime  string          `json:"update_time,omitempty"`
}

// ModelRegistration is the body of POST /api/models/download
type ModelRegistration struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	LocalPath   string `json:"local_path,omitempty"`
	RemoteURL   string `json:"remote_url,omitempty"`
	Version     string `json:"version,omitempty"`
	Config      any    `json:"config,omitempty"`
	Size        *int64 `json:"size,omitempty"`
}

// Message is the {"message"} / {"msg"} acknowledgement body returned by mutations
type Message struct {
	Message string `json:"message,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

// Text returns whichever acknowledgement field is set
func (m Message) Text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Msg
}

// Artifact is a downloaded export ready to be streamed or mirrored
type Artifact struct {
	TaskID      int       `json:"task_id"`
	Format      string    `json:"format"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	Locations   []string  `json:"locations,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArtifactName is the client-side file name for an exported result
func ArtifactName(taskID int, format string) string {
	return fmt.Sprintf("asr_result_%d.%s", taskID, format)
}

// MaskKey hides all but the last four characters of a credential
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
