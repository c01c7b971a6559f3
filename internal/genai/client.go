// Package genai talks to the generative-language backend. Gemini is
// reached through its OpenAI-compatible endpoint, so the client is a thin
// layer over openai-go.
package genai

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var (
	// ErrNoAPIKey is returned when no credentials are configured.
	ErrNoAPIKey = errors.New("GOOGLE_API_KEY not set")

	// ErrEmptyResponse means the backend answered but the payload had no
	// candidate to read text from.
	ErrEmptyResponse = errors.New("no choices in response")
)

// Generator produces a text completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	MaxRetries int // negative keeps the SDK default
}

// Client is a Generator backed by a chat-completions endpoint.
type Client struct {
	api   openai.Client
	model string
}

// New builds a Client. It fails with ErrNoAPIKey when opt.APIKey is empty
// so callers can degrade instead of issuing doomed requests.
func New(opt Options) (*Client, error) {
	if opt.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if opt.Model == "" {
		return nil, errors.New("empty model name")
	}

	opts := []option.RequestOption{option.WithAPIKey(opt.APIKey)}
	if opt.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(opt.BaseURL))
	}
	if opt.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(opt.HTTPClient))
	}
	if opt.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(opt.MaxRetries))
	}

	return &Client{
		api:   openai.NewClient(opts...),
		model: opt.Model,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Generate sends prompt as a single user message and returns the reply
// text. When the first choice carries no text the raw response body is
// returned instead.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		log.Debug("Response without text, using raw body", "model", c.model)
		return resp.RawJSON(), nil
	}

	return content, nil
}
