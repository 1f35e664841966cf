package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// UploadFile is one file selected for upload. Open is called once per upload attempt.
type UploadFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FileFromPath returns an UploadFile reading from disk
func FileFromPath(path string) UploadFile {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	return UploadFile{
		Name: filepath.Base(path),
		Size: size,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FileFromBytes returns an UploadFile backed by memory
func FileFromBytes(name string, data []byte) UploadFile {
	return UploadFile{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// UploadResult is one entry of the /audio/upload response
type UploadResult struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
}

// AudioService covers the /audio endpoints
type AudioService struct {
	c *Client
}

// List returns all uploaded audio files
func (s *AudioService) List(ctx context.Context) ([]types.AudioFile, error) {
	var out []types.AudioFile
	if err := s.c.doJSON(ctx, http.MethodGet, "/audio/list", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload sends all files in one multipart request, one "files" part per file
func (s *AudioService) Upload(ctx context.Context, files []UploadFile) ([]UploadResult, error) {
	if len(files) == 0 {
		return nil, nil
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	// Write multipart in a goroutine so the pipe feeds the request body.
	go func() {
		pw.CloseWithError(writeParts(writer, files))
	}()

	body, _, err := s.c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/audio/upload",
		body:        pr,
		contentType: writer.FormDataContentType(),
	})
	// Unblock the writer if the request ended before it drained the pipe.
	pr.Close()
	if err != nil {
		return nil, err
	}

	var out []UploadResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return out, nil
}

func writeParts(writer *multipart.Writer, files []UploadFile) error {
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", f.Name, err)
		}
		_, err = io.Copy(part, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	return writer.Close()
}

// Delete removes an audio file
func (s *AudioService) Delete(ctx context.Context, id int) error {
	return s.c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/audio/delete/%d", id), nil, nil, nil)
}
