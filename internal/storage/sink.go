package storage

import (
	"context"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// Sink stores a copy of an exported artifact and returns where it went
type Sink interface {
	Save(ctx context.Context, a *types.Artifact) (string, error)
}

var (
	_ Sink = (*LocalStorage)(nil)
	_ Sink = (*DriveClient)(nil)
	_ Sink = (*MinioStorage)(nil)
)
