package relay

import (
	"log/slog"

	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/ports"
)

// Option defines a functional option for configuring the Relay.
type Option func(*Relay)

// WithToolSource attaches a tool source whose tools are offered to the
// provider on every dispatch.
func WithToolSource(source ports.ToolSource) Option {
	return func(r *Relay) {
		r.source = source
	}
}

// WithSystemPrompt sets the instruction inserted as the first turn of the
// transcript on the first dispatch. An empty prompt means no system turn.
func WithSystemPrompt(prompt string) Option {
	return func(r *Relay) {
		r.system = prompt
	}
}

// WithCompletionOptions sets the per-dispatch generation parameters.
func WithCompletionOptions(opts ports.CompletionOptions) Option {
	return func(r *Relay) {
		r.options = opts
	}
}

// WithInterceptor guards tool execution, typically with a user confirmation
// prompt.
func WithInterceptor(interceptor ports.ToolInterceptor) Option {
	return func(r *Relay) {
		r.interceptor = interceptor
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Relay) {
		r.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}
