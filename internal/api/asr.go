package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// ASRService covers the /asr endpoints
type ASRService struct {
	c *Client
}

// Submit creates a recognition job. nil params are sent as an empty object.
func (s *ASRService) Submit(ctx context.Context, audioFileID int, modelName string, params map[string]any) (*types.ASRTask, error) {
	if params == nil {
		params = map[string]any{}
	}
	body := types.TaskSubmission{
		AudioFileID: audioFileID,
		ModelName:   modelName,
		ModelParams: params,
	}
	var out types.ASRTask
	if err := s.c.doJSON(ctx, http.MethodPost, "/asr/submit", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns all recognition jobs
func (s *ASRService) List(ctx context.Context) ([]types.ASRTask, error) {
	var out []types.ASRTask
	if err := s.c.doJSON(ctx, http.MethodGet, "/asr/list", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Progress returns the current status and progress of a job
func (s *ASRService) Progress(ctx context.Context, taskID int) (*types.ASRTask, error) {
	var out types.ASRTask
	if err := s.c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/asr/progress/%d", taskID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Result returns the recognized text and summary of a finished job
func (s *ASRService) Result(ctx context.Context, taskID int) (*types.ASRResult, error) {
	var out types.ASRResult
	if err := s.c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/asr/result/%d", taskID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
