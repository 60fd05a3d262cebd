package ports

import (
	"context"

	"github.com/hinaba/parley/pkg/domain"
)

// CompletionOptions carries the tunable knobs of a completion exchange.
// Zero values mean "use the adapter's default".
type CompletionOptions struct {
	Model       string   `json:"model,omitempty" mapstructure:"model"`
	MaxTokens   int      `json:"max_tokens,omitempty" mapstructure:"max_tokens"`
	Temperature *float64 `json:"temperature,omitempty" mapstructure:"temperature"`
	TopP        *float64 `json:"top_p,omitempty" mapstructure:"top_p"`
}

// ToolInvoker executes one tool call on behalf of a provider adapter.
// The relay supplies it so adapters stay ignorant of interception policy,
// schema validation, and the tool transport.
type ToolInvoker func(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error)

// CompletionRequest is the input of one dispatch.
type CompletionRequest struct {
	// Turns is the transcript snapshot to send, system turn first if present.
	Turns []domain.Turn

	// Tools advertises the callable tools for this exchange. Empty means the
	// request carries no tool definitions.
	Tools []domain.Tool

	// Invoke runs a tool call. It must be non-nil whenever Tools is non-empty.
	Invoke ToolInvoker

	Options CompletionOptions
}

// Completion is the outcome of one dispatch.
type Completion struct {
	// Text is the reply to surface, tool-call markers included, whitespace
	// already trimmed.
	Text string

	// Model is the model that actually served the exchange.
	Model string

	// StopReason is the provider's final stop reason, verbatim.
	StopReason string

	// ToolRounds counts how many tool round trips the exchange made.
	ToolRounds int
}

// Completer performs one completion exchange with an LLM provider.
//
// Implementations make exactly one attempt per HTTP round: no retries, no
// backoff, no fallback models. A tool-requesting response triggers further
// rounds within the same Complete call, each again a single attempt.
type Completer interface {
	// Name identifies the provider (e.g. "anthropic", "openai").
	Name() string

	// Complete sends the request and returns the final completion.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}
