package parley

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hinaba/parley/internal/relay"
	"github.com/hinaba/parley/pkg/adapters/anthropic"
	"github.com/hinaba/parley/pkg/adapters/mcp"
	"github.com/hinaba/parley/pkg/adapters/openai"
	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/ports"
)

// Version identifies the library build. Releases override it via ldflags.
var Version = "0.1.0-dev"

// Session is the high-level entry point for the parley library.
// It wraps the internal relay and provides a simplified API for consumers.
type Session struct {
	relay       *relay.Relay
	completer   ports.Completer
	source      ports.ToolSource
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature *float64
	system      string
	options     ports.CompletionOptions
	hooks       domain.LifecycleHooks
	interceptor ports.ToolInterceptor
	httpClient  *http.Client
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Session.
type Option func(*Session)

// WithAPIKey sets the provider credential, overriding the environment.
func WithAPIKey(key string) Option {
	return func(s *Session) {
		s.apiKey = key
	}
}

// WithBaseURL points the provider at a different endpoint.
func WithBaseURL(url string) Option {
	return func(s *Session) {
		s.baseURL = url
	}
}

// WithModel sets the default model for the session.
func WithModel(model string) Option {
	return func(s *Session) {
		s.model = model
	}
}

// WithMaxTokens caps the response length per dispatch.
func WithMaxTokens(n int) Option {
	return func(s *Session) {
		s.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(s *Session) {
		s.temperature = &t
	}
}

// WithSystemPrompt sets the instruction inserted as the first transcript turn
// on the first Send.
func WithSystemPrompt(prompt string) Option {
	return func(s *Session) {
		s.system = prompt
	}
}

// WithCompletionOptions sets per-dispatch generation parameters, overriding
// the session defaults. Useful for agent profiles loaded from config.
func WithCompletionOptions(opts ports.CompletionOptions) Option {
	return func(s *Session) {
		s.options = opts
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithToolInterceptor guards tool execution, typically with a confirmation
// prompt.
func WithToolInterceptor(interceptor ports.ToolInterceptor) Option {
	return func(s *Session) {
		s.interceptor = interceptor
	}
}

// WithCompleter injects a custom completion provider, bypassing the built-in
// provider selection.
func WithCompleter(completer ports.Completer) Option {
	return func(s *Session) {
		s.completer = completer
	}
}

// WithToolSource attaches an already-connected tool source.
func WithToolSource(source ports.ToolSource) Option {
	return func(s *Session) {
		s.source = source
	}
}

// WithHTTPClient replaces the HTTP client used by the provider.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Session) {
		s.httpClient = hc
	}
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New initializes a new Session against the named provider ("anthropic" or
// "openai"). If WithCompleter is provided, provider can be empty and the
// built-in selection is skipped.
func New(provider string, opts ...Option) (*Session, error) {
	s := &Session{}

	// Apply options first to check if a completer is provided.
	for _, opt := range opts {
		opt(s)
	}

	// Ensure logger is initialized (so we don't pass nil down, which would
	// overwrite the relay's default).
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if s.completer == nil {
		completer, err := s.buildCompleter(provider)
		if err != nil {
			return nil, err
		}
		s.completer = completer
	}
	s.Name = s.completer.Name()

	// Enrich logger with the provider name.
	s.logger = s.logger.With("provider", s.Name)

	relayOpts := []relay.Option{
		relay.WithSystemPrompt(s.system),
		relay.WithCompletionOptions(s.options),
		relay.WithLifecycleHooks(s.hooks),
		relay.WithInterceptor(s.interceptor),
		relay.WithLogger(s.logger),
	}
	if s.source != nil {
		relayOpts = append(relayOpts, relay.WithToolSource(s.source))
	}
	s.relay = relay.New(s.completer, relayOpts...)

	return s, nil
}

func (s *Session) buildCompleter(provider string) (ports.Completer, error) {
	switch provider {
	case "anthropic":
		anthropicOpts := []anthropic.Option{anthropic.WithLogger(s.logger)}
		if s.httpClient != nil {
			anthropicOpts = append(anthropicOpts, anthropic.WithHTTPClient(s.httpClient))
		}
		return anthropic.NewClient(anthropic.Config{
			APIKey:      s.apiKey,
			BaseURL:     s.baseURL,
			Model:       s.model,
			MaxTokens:   s.maxTokens,
			Temperature: s.temperature,
		}, anthropicOpts...)
	case "openai":
		openaiOpts := []openai.Option{openai.WithLogger(s.logger)}
		if s.httpClient != nil {
			openaiOpts = append(openaiOpts, openai.WithHTTPClient(s.httpClient))
		}
		return openai.NewClient(openai.Config{
			APIKey:      s.apiKey,
			BaseURL:     s.baseURL,
			Model:       s.model,
			MaxTokens:   s.maxTokens,
			Temperature: s.temperature,
		}, openaiOpts...)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, provider)
	}
}

// Connect launches the MCP server described by spec and attaches its tools
// to the session. Call it between dispatches, usually before the first Send.
func (s *Session) Connect(ctx context.Context, name string, spec mcp.ServerSpec) error {
	client, err := mcp.Connect(ctx, name, spec,
		mcp.WithLogger(s.logger),
		mcp.WithClientInfo("parley", Version),
	)
	if err != nil {
		return err
	}
	s.source = client
	s.relay.SetToolSource(client)
	return nil
}

// Send relays one user message and returns the assistant's reply. On failure
// the transcript keeps the user turn, gains no assistant turn, and the error
// is returned; render domain.GenericErrorReply to the user in that case.
func (s *Session) Send(ctx context.Context, input string) (string, error) {
	return s.relay.Dispatch(ctx, input)
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []domain.Turn {
	return s.relay.Transcript()
}

// Provider returns the name of the completion provider.
func (s *Session) Provider() string {
	return s.relay.Provider()
}

// Close shuts down the attached tool source, if any.
func (s *Session) Close() error {
	if s.source == nil {
		return nil
	}
	err := s.source.Close()
	s.source = nil
	return err
}
