package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// LocalStorage handles saving exported artifacts to the local filesystem
type LocalStorage struct {
	outputDir string
	now       func() time.Time
}

// NewLocalStorage creates a new local storage handler
func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{
		outputDir: outputDir,
		now:       time.Now,
	}
}

// Save writes the artifact under a dated directory, keeping its file name
func (ls *LocalStorage) Save(ctx context.Context, a *types.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Create dated directory structure: exports/2025/01/23/
	now := ls.now()
	dateDir := filepath.Join(ls.outputDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create date directory: %v", err)
	}

	path := filepath.Join(dateDir, sanitizeFilename(a.Name))
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to save artifact: %v", err)
	}

	return path, nil
}

// SaveTo writes the artifact into dir exactly as named, for CLI downloads
func SaveTo(dir string, a *types.Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %v", err)
	}
	path := filepath.Join(dir, sanitizeFilename(a.Name))
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to save artifact: %v", err)
	}
	return path, nil
}

// sanitizeFilename strips directories and limits length
func sanitizeFilename(name string) string {
	result := filepath.Base(filepath.Clean("/" + name))
	if result == "/" || result == "." {
		result = "artifact"
	}
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}
