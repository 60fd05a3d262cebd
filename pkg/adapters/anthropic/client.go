// Package anthropic implements the Completer port on top of the official
// Anthropic Go SDK.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hinaba/parley/internal/logging"
	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/ports"
)

const (
	// DefaultModel is used when neither config nor per-call options name one.
	DefaultModel = string(anthropic.ModelClaude3_5Sonnet20241022)

	// EnvAPIKey is consulted when the config carries no key.
	EnvAPIKey = "ANTHROPIC_API_KEY"
)

// Config carries the connection settings for the Anthropic API.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Client is a messages-API client. Retries are disabled so every dispatch is
// a single attempt.
type Client struct {
	cfg        Config
	api        *anthropic.Client
	httpClient *http.Client
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a structured logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient validates the config and returns a ready client.
// The key comes from the config or, failing that, from EnvAPIKey.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(EnvAPIKey)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w (set %s)", domain.ErrMissingAPIKey, EnvAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = domain.DefaultMaxTokens
	}

	c := &Client{
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if c.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(c.httpClient))
	}

	api := anthropic.NewClient(reqOpts...)
	c.api = &api
	return c, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return "anthropic" }

var _ ports.Completer = (*Client)(nil)

// Complete performs one completion exchange, feeding tool results back as
// user messages until the model stops asking for tools. The returned text
// interleaves the model's segments with tool-call markers, joined by blank
// lines.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.Completion, error) {
	system, msgs := splitTurns(req.Turns)

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

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if temperature != nil {
		params.Temperature = anthropic.Float(*temperature)
	}
	if len(req.Tools) > 0 && req.Invoke != nil {
		params.Tools = toolParams(req.Tools)
	}

	var segments []string
	rounds := 0
	for {
		msg, err := c.api.Messages.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("anthropic: message request: %w", err)
		}

		var toolResults []anthropic.ContentBlockParamUnion
		for _, block := range msg.Content {
			switch v := block.AsAny().(type) {
			case anthropic.TextBlock:
				if v.Text != "" {
					segments = append(segments, v.Text)
				}
			case anthropic.ToolUseBlock:
				if req.Invoke == nil {
					continue
				}
				call := domain.ToolCall{ID: v.ID, Name: v.Name, Args: decodeArgs(v.JSON.Input.Raw())}
				segments = append(segments, call.Marker())

				result, err := req.Invoke(ctx, call)
				if err != nil {
					return nil, fmt.Errorf("tool %s: %w", call.Name, err)
				}
				toolResults = append(toolResults, anthropic.NewToolResultBlock(v.ID, result.Text(), result.IsError))
			}
		}

		if len(toolResults) == 0 {
			respModel := string(msg.Model)
			if respModel == "" {
				respModel = model
			}
			return &ports.Completion{
				Text:       strings.TrimSpace(strings.Join(segments, "\n\n")),
				Model:      respModel,
				StopReason: string(msg.StopReason),
				ToolRounds: rounds,
			}, nil
		}

		rounds++
		if rounds > domain.DefaultMaxToolRounds {
			return nil, fmt.Errorf("anthropic: %w after %d rounds", domain.ErrToolRoundsExceeded, rounds-1)
		}

		params.Messages = append(params.Messages, msg.ToParam())
		params.Messages = append(params.Messages, anthropic.NewUserMessage(toolResults...))
		c.logger.Debug("tool round completed", "round", rounds, "calls", len(toolResults))
	}
}

// splitTurns lifts a leading system turn into the dedicated system field and
// maps the rest onto message params.
func splitTurns(turns []domain.Turn) (string, []anthropic.MessageParam) {
	var system string
	msgs := make([]anthropic.MessageParam, 0, len(turns))
	for i, turn := range turns {
		switch {
		case i == 0 && turn.Role == domain.RoleSystem:
			system = turn.Content
		case turn.Role == domain.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}
	return system, msgs
}

func toolParams(tools []domain.Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := anthropic.ToolInputSchemaParam{}
		if props, ok := t.InputSchema["properties"]; ok {
			schema.Properties = props
		}
		schema.Required = requiredKeys(t.InputSchema)

		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: schema,
		}})
	}
	return out
}

func requiredKeys(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		keys := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				keys = append(keys, s)
			}
		}
		return keys
	default:
		return nil
	}
}

func decodeArgs(raw string) map[string]any {
	args := map[string]any{}
	if raw == "" || raw == "null" {
		return args
	}
	// A malformed input block reaches the tool as empty args.
	_ = json.Unmarshal([]byte(raw), &args)
	return args
}
