// Package endpoint talks to the OpenAI-compatible API a serving job exposes.
// It answers two questions: is the server up, and does the served model
// actually respond.
package endpoint

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client wraps the OpenAI-compatible API of a vllm server.
type Client struct {
	api *openai.Client
}

// New builds a client for the given base URL (".../v1"). The key may be
// empty for servers started without --api-key.
func New(baseURL, apiKey string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Client{api: openai.NewClientWithConfig(cfg)}
}

// Models lists the model IDs the server exposes.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("endpoint: list models: %w", err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// HasModel reports whether the server serves the named model. An empty name
// matches any model.
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	ids, err := c.Models(ctx)
	if err != nil {
		return false, err
	}
	if name == "" {
		return len(ids) > 0, nil
	}
	for _, id := range ids {
		if id == name {
			return true, nil
		}
	}
	return false, nil
}

// WaitReady polls the models endpoint until the named model shows up or the
// context ends. Poll errors are expected while the job is still loading
// weights and are swallowed.
func (c *Client) WaitReady(ctx context.Context, model string, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if ok, err := c.HasModel(ctx, model); err == nil && ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("endpoint: server not ready: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// SmokeChat sends a one-line completion request and returns the reply text.
func (c *Client) SmokeChat(ctx context.Context, model string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: 32,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Say hi."},
		},
	})
	if err != nil {
		return "", fmt.Errorf("endpoint: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("endpoint: chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// SmokeEmbedding embeds a test sentence and returns the vector dimension.
func (c *Client) SmokeEmbedding(ctx context.Context, model string) (int, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(model),
		Input: []string{"This is a test sentence."},
	})
	if err != nil {
		return 0, fmt.Errorf("endpoint: embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return 0, fmt.Errorf("endpoint: embedding returned no data")
	}
	return len(resp.Data[0].Embedding), nil
}
