package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/asr-console/internal/media"
	"github.com/codebuildervaibhav/asr-console/internal/queue"
	"github.com/codebuildervaibhav/asr-console/internal/storage"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// DriveDownloader fetches a Drive file the console is authorized to read
type DriveDownloader interface {
	Download(ctx context.Context, fileID string, w io.Writer) (string, error)
}

// ImportHandler stages audio from uploads and Google Drive links and queues
// it for upload to the backend
type ImportHandler struct {
	workerPool *queue.WorkerPool
	tempDir    string
	maxSizeMB  int
	drive      DriveDownloader
	httpClient *http.Client
}

// NewImportHandler creates a new import handler. drive may be nil, in which
// case only link-shared files can be imported.
func NewImportHandler(workerPool *queue.WorkerPool, tempDir string, maxSizeMB int, drive DriveDownloader, httpClient *http.Client) *ImportHandler {
	return &ImportHandler{
		workerPool: workerPool,
		tempDir:    tempDir,
		maxSizeMB:  maxSizeMB,
		drive:      drive,
		httpClient: httpClient,
	}
}

// GDriveRequest represents the request body
type GDriveRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// GDrive downloads a Google Drive file into staging and queues it
func (h *ImportHandler) GDrive(c *fiber.Ctx) error {
	var req GDriveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", "ERR_INVALID_BODY")
	}

	if req.URL == "" {
		return badRequest(c, "URL is required", "ERR_NO_URL")
	}

	// Extract file ID from various Google Drive URL formats
	fileID := extractGDriveFileID(req.URL)
	if fileID == "" {
		return badRequest(c, "Invalid Google Drive URL", "ERR_INVALID_URL")
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, jobID+".download")

	out, err := os.Create(tempPath)
	if err != nil {
		log.Printf("Failed to create staging file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save downloaded file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	log.Printf("Downloading from Google Drive: %s", fileID)
	name, err := h.download(c.UserContext(), fileID, out)
	out.Close()
	if err != nil {
		os.Remove(tempPath)
		log.Printf("Failed to download from Google Drive: %v", err)
		return respondError(c, err)
	}

	if req.Name != "" {
		name = req.Name
	}
	if name == "" {
		name = "gdrive_file.mp3"
	}
	if !media.ValidateAudioFormat(name) {
		os.Remove(tempPath)
		return badRequest(c, fmt.Sprintf("%s: unsupported audio format", name), "ERR_INVALID_FORMAT")
	}

	job := queue.NewJob(jobID, name, types.SourceGDrive, tempPath)
	if err := h.workerPool.EnqueueJob(job); err != nil {
		os.Remove(tempPath)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id":  jobID,
		"status":  queue.StatusQueued,
		"message": "Google Drive file downloaded, upload queued",
	})
}

// download prefers the authorized client and falls back to the public link
func (h *ImportHandler) download(ctx context.Context, fileID string, w *os.File) (string, error) {
	if h.drive != nil {
		name, err := h.drive.Download(ctx, fileID, w)
		if err == nil {
			return name, nil
		}
		log.Printf("Authorized Drive download failed, trying public link: %v", err)
		if err := resetFile(w); err != nil {
			return "", err
		}
	}
	return "", storage.DownloadPublic(ctx, h.httpClient, fileID, w)
}

func resetFile(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	_, err := f.Seek(0, io.SeekStart)
	return err
}

// Upload stages one uploaded file and queues it, returning immediately
func (h *ImportHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded", "ERR_NO_FILE")
	}

	name := c.FormValue("name")
	if name == "" {
		name = file.Filename
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return badRequest(c, fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB), "ERR_FILE_TOO_LARGE")
	}

	if !media.ValidateAudioFormat(file.Filename) {
		return badRequest(c, "Unsupported audio format", "ERR_INVALID_FORMAT")
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, jobID+filepath.Ext(file.Filename))

	if err := c.SaveFile(file, tempPath); err != nil {
		log.Printf("Failed to save uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	job := queue.NewJob(jobID, name, types.SourceUpload, tempPath)
	if err := h.workerPool.EnqueueJob(job); err != nil {
		os.Remove(tempPath)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id":  jobID,
		"status":  queue.StatusQueued,
		"message": "File received, upload queued",
	})
}

// List returns recent import jobs
func (h *ImportHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.workerPool.Jobs())
}

// Get returns one import job
func (h *ImportHandler) Get(c *fiber.Ctx) error {
	job, ok := h.workerPool.Job(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job not found",
			"code":  "ERR_NOT_FOUND",
		})
	}
	return c.JSON(job)
}

var (
	driveFilePattern  = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	driveQueryPattern = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	driveIDPattern    = regexp.MustCompile(`^([a-zA-Z0-9_-]{25,40})$`)
)

// extractGDriveFileID extracts the file ID from various Google Drive URL formats
func extractGDriveFileID(url string) string {
	// Pattern 1: https://drive.google.com/file/d/{ID}/view
	if matches := driveFilePattern.FindStringSubmatch(url); len(matches) > 1 {
		return matches[1]
	}

	// Pattern 2: https://drive.google.com/open?id={ID}
	if matches := driveQueryPattern.FindStringSubmatch(url); len(matches) > 1 {
		return matches[1]
	}

	// Pattern 3: Direct ID (25-40 characters)
	if matches := driveIDPattern.FindStringSubmatch(url); len(matches) > 1 {
		return matches[1]
	}

	return ""
}
