package views

import (
	"context"
	"log"
	"time"

	"github.com/codebuildervaibhav/asr-console/internal/media"
	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// ArtifactSink mirrors an exported artifact somewhere and returns its location
type ArtifactSink interface {
	Save(ctx context.Context, a *types.Artifact) (string, error)
}

// ExportLog records completed exports
type ExportLog interface {
	RecordExport(ctx context.Context, a *types.Artifact) error
}

// Exporter downloads results in a chosen format and hands them to the sinks
type Exporter struct {
	api   ExportAPI
	log   ExportLog
	sinks []ArtifactSink
}

// NewExporter creates an exporter. log and sinks may be nil/empty.
func NewExporter(exports ExportAPI, exportLog ExportLog, sinks ...ArtifactSink) *Exporter {
	return &Exporter{api: exports, log: exportLog, sinks: sinks}
}

// Export downloads the result of taskID. Unsupported formats are rejected
// before any request is made.
func (e *Exporter) Export(ctx context.Context, taskID int, format string) (*types.Artifact, error) {
	if !types.IsExportFormat(format) {
		return nil, ErrUnsupportedFormat
	}
	if taskID <= 0 {
		return nil, ErrNoSelection
	}

	payload, err := e.api.Result(ctx, taskID, format)
	if err != nil {
		return nil, err
	}

	contentType := payload.ContentType
	if contentType == "" {
		contentType = media.ContentType(format)
	}
	a := &types.Artifact{
		TaskID:      taskID,
		Format:      format,
		Name:        types.ArtifactName(taskID, format),
		ContentType: contentType,
		Data:        payload.Data,
		CreatedAt:   time.Now(),
	}

	for _, sink := range e.sinks {
		loc, err := sink.Save(ctx, a)
		if err != nil {
			log.Printf("Failed to mirror %s: %v", a.Name, err)
			continue
		}
		a.Locations = append(a.Locations, loc)
	}

	if e.log != nil {
		if err := e.log.RecordExport(ctx, a); err != nil {
			log.Printf("Failed to record export %s: %v", a.Name, err)
		}
	}

	log.Printf("Exported %s (%d bytes)", a.Name, len(a.Data))
	return a, nil
}
