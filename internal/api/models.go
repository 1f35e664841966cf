package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// ModelService covers the /api/models endpoints
type ModelService struct {
	c *Client
}

// List returns all model records
func (s *ModelService) List(ctx context.Context) ([]types.ModelInfo, error) {
	var out []types.ModelInfo
	if err := s.c.doJSON(ctx, http.MethodGet, "/api/models", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Register creates a model record, downloading it when RemoteURL is set
func (s *ModelService) Register(ctx context.Context, reg types.ModelRegistration) (*types.ModelInfo, error) {
	var out types.ModelInfo
	if err := s.c.doJSON(ctx, http.MethodPost, "/api/models/download", nil, reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Switch makes a model the active one of its type
func (s *ModelService) Switch(ctx context.Context, id int) (string, error) {
	var out types.Message
	err := s.c.doJSON(ctx, http.MethodPost, "/api/models/switch", nil, map[string]int{"id": id}, &out)
	return out.Text(), err
}

// Delete removes a model record and optionally its file
func (s *ModelService) Delete(ctx context.Context, id int, deleteFile bool) (string, error) {
	var out types.Message
	query := url.Values{"delete_file": {strconv.FormatBool(deleteFile)}}
	err := s.c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/models/%d", id), query, nil, &out)
	return out.Text(), err
}

// UpdateConfig replaces a model's configuration
func (s *ModelService) UpdateConfig(ctx context.Context, id int, config any) (*types.ModelInfo, error) {
	var out types.ModelInfo
	body := map[string]any{"config": config}
	if err := s.c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/models/%d/config", id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Load loads a model into backend memory
func (s *ModelService) Load(ctx context.Context, id int) (string, error) {
	var out types.Message
	err := s.c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/models/%d/load", id), nil, nil, &out)
	return out.Text(), err
}

// Unload releases a model from backend memory
func (s *ModelService) Unload(ctx context.Context, id int) (string, error) {
	var out types.Message
	err := s.c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/models/%d/unload", id), nil, nil, &out)
	return out.Text(), err
}
