package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ExportService covers /export/result
type ExportService struct {
	c *Client
}

// Payload is a binary export body and its content type
type Payload struct {
	Data        []byte
	ContentType string
}

// Result downloads the export of a task in the given format
func (s *ExportService) Result(ctx context.Context, taskID int, format string) (*Payload, error) {
	body, header, err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/export/result/%d", taskID),
		query:  url.Values{"format": {format}},
	})
	if err != nil {
		return nil, err
	}
	return &Payload{Data: body, ContentType: header.Get("Content-Type")}, nil
}
