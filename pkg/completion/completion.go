// Package completion talks to an OpenAI-compatible chat completions API.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL = "https://router.huggingface.co/v1"
	DefaultModel   = "meta-llama/Llama-3.2-3B-Instruct:novita"
	DefaultTimeout = 10 * time.Second
)

var (
	ErrNotConfigured = errors.New("completion: api key not configured")
	ErrUpstream      = errors.New("completion: upstream request failed")
	ErrEmpty         = errors.New("completion: empty response")
)

// Completer answers a single user prompt under a system prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// HTTPClient is optional; tests point it at a local server.
	HTTPClient *http.Client
}

type OpenAICompleter struct {
	client     openai.Client
	model      string
	configured bool
}

func NewOpenAI(cfg Config) *OpenAICompleter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client := openai.NewClient(
		option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	)

	return &OpenAICompleter{client: client, model: cfg.Model, configured: cfg.APIKey != ""}
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmpty
	}
	return resp.Choices[0].Message.Content, nil
}
