package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// HistoryService covers the /history endpoints
type HistoryService struct {
	c *Client
}

// Tasks lists every task, including ones without audio
func (s *HistoryService) Tasks(ctx context.Context) ([]types.ASRTask, error) {
	var out []types.ASRTask
	if err := s.c.doJSON(ctx, http.MethodGet, "/history/tasks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Results lists every stored result
func (s *HistoryService) Results(ctx context.Context) ([]types.ASRResult, error) {
	var out []types.ASRResult
	if err := s.c.doJSON(ctx, http.MethodGet, "/history/results", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTask removes a task
func (s *HistoryService) DeleteTask(ctx context.Context, taskID int) error {
	return s.c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/history/task/%d", taskID), nil, nil, nil)
}

// DeleteResult removes a result
func (s *HistoryService) DeleteResult(ctx context.Context, resultID int) error {
	return s.c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/history/result/%d", resultID), nil, nil, nil)
}
