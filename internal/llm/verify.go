// Package llm checks doubao credentials against the OpenAI-compatible endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// ErrMissingKey is returned when no API key has been saved
var ErrMissingKey = errors.New("api key is empty")

// Verifier sends a one-token chat completion to prove credentials work
type Verifier struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewVerifier creates a verifier. A nil client uses http.DefaultClient.
func NewVerifier(httpClient *http.Client, timeout time.Duration) *Verifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Verifier{httpClient: httpClient, timeout: timeout}
}

// Verify reports whether cfg can complete a chat request
func (v *Verifier) Verify(ctx context.Context, cfg types.LLMConfig) error {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return ErrMissingKey
	}
	if cfg.Model == "" {
		cfg.Model = types.DefaultDoubaoModel
	}
	if cfg.APIBase == "" {
		cfg.APIBase = types.DefaultDoubaoAPIBase
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.APIBase, "/")
	clientConfig.HTTPClient = v.httpClient
	client := openai.NewClientWithConfig(clientConfig)

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	_, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "ping",
			},
		},
		MaxTokens: 1,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("%s (status %d)", apiErr.Message, apiErr.HTTPStatusCode)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	return nil
}
