package api

import (
	"context"
	"net/http"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// SummaryService covers /summary/generate
type SummaryService struct {
	c *Client
}

// Generate asks the backend to (re)generate and store the summary of a task
func (s *SummaryService) Generate(ctx context.Context, req types.SummaryRequest) (*types.SummaryOut, error) {
	var out types.SummaryOut
	if err := s.c.doJSON(ctx, http.MethodPost, "/summary/generate", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
