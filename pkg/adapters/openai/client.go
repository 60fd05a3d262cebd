// Package openai implements the Completer port against any OpenAI-compatible
// chat-completions endpoint over plain HTTP.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hinaba/parley/internal/logging"
	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/ports"
)

const (
	// DefaultBaseURL targets the hosted OpenAI API; point it elsewhere for
	// compatible servers.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel matches the relay's historical default.
	DefaultModel = "gpt-4o-mini"

	// EnvAPIKey is consulted when the config carries no key.
	EnvAPIKey = "OPENAI_API_KEY"

	defaultTimeout   = 2 * time.Minute
	maxResponseBytes = 10 << 20
)

// Config carries the connection settings for an endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Client is a chat-completion client. It makes exactly one attempt per HTTP
// round: no retries, no backoff.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets a structured logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient validates the config and returns a ready client.
// The bearer token comes from the config or, failing that, from EnvAPIKey.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(EnvAPIKey)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w (set %s)", domain.ErrMissingAPIKey, EnvAPIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = domain.DefaultMaxTokens
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return "openai" }

var _ ports.Completer = (*Client)(nil)

// -- Wire types --

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Tools       []toolSpec    `json:"tools,omitempty"`
}

type chatResponse struct {
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

type choice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Complete performs one completion exchange, driving the tool round trips
// the endpoint requests. The returned text interleaves the model's segments
// with tool-call markers, joined by blank lines.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.Completion, error) {
	msgs := make([]chatMessage, 0, len(req.Turns)+4)
	for _, turn := range req.Turns {
		msgs = append(msgs, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}

	model := req.Options.Model
	if model == "" {
		model = c.cfg.Model
	}
	maxTokens := req.Options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	temperature := req.Options.Temperature
	if temperature == nil {
		temperature = c.cfg.Temperature
	}

	var specs []toolSpec
	if len(req.Tools) > 0 && req.Invoke != nil {
		specs = make([]toolSpec, 0, len(req.Tools))
		for _, t := range req.Tools {
			specs = append(specs, toolSpec{
				Type: "function",
				Function: functionSpec{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.InputSchema,
				},
			})
		}
	}

	var segments []string
	rounds := 0
	for {
		resp, err := c.post(ctx, chatRequest{
			Model:       model,
			Messages:    msgs,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Tools:       specs,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("openai: response carried no choices")
		}

		msg := resp.Choices[0].Message
		if msg.Content != "" {
			segments = append(segments, msg.Content)
		}

		if len(msg.ToolCalls) == 0 || req.Invoke == nil {
			respModel := resp.Model
			if respModel == "" {
				respModel = model
			}
			return &ports.Completion{
				Text:       strings.TrimSpace(strings.Join(segments, "\n\n")),
				Model:      respModel,
				StopReason: resp.Choices[0].FinishReason,
				ToolRounds: rounds,
			}, nil
		}

		rounds++
		if rounds > domain.DefaultMaxToolRounds {
			return nil, fmt.Errorf("openai: %w after %d rounds", domain.ErrToolRoundsExceeded, rounds-1)
		}

		msgs = append(msgs, msg)
		for _, tc := range msg.ToolCalls {
			args := map[string]any{}
			if tc.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					return nil, fmt.Errorf("openai: decode args for tool %s: %w", tc.Function.Name, err)
				}
			}
			call := domain.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: args}
			segments = append(segments, call.Marker())

			result, err := req.Invoke(ctx, call)
			if err != nil {
				return nil, fmt.Errorf("tool %s: %w", call.Name, err)
			}
			msgs = append(msgs, chatMessage{
				Role:       "tool",
				ToolCallID: tc.ID,
				Name:       tc.Function.Name,
				Content:    result.Text(),
			})
		}
		c.logger.Debug("tool round completed", "round", rounds, "calls", len(msg.ToolCalls))
	}
}

// post sends one request. Any transport error, non-200 status, or undecodable
// body fails the dispatch immediately.
func (c *Client) post(ctx context.Context, body chatRequest) (*chatResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	c.logger.Debug("chat completion request",
		"model", body.Model,
		"messages", len(body.Messages),
		"tools", len(body.Tools),
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai: status %d: %s", resp.StatusCode, snippet(data))
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	return &out, nil
}

// snippet keeps error messages readable when the server returns a long body.
func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 512 {
		return s[:512] + "..."
	}
	return s
}
