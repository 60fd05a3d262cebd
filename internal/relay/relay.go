// Package relay coordinates the transcript, the completion provider, and the
// tool source for a single conversation.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hinaba/parley/internal/logging"
	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/ports"
	"github.com/hinaba/parley/pkg/schema"
)

// Relay owns one conversation. It is not safe for concurrent use; callers
// hold at most one dispatch in flight and serialize around it.
type Relay struct {
	completer   ports.Completer
	source      ports.ToolSource
	transcript  *domain.Transcript
	system      string
	options     ports.CompletionOptions
	interceptor ports.ToolInterceptor
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// New creates a relay around the given completion provider.
func New(completer ports.Completer, opts ...Option) *Relay {
	r := &Relay{
		completer:  completer,
		transcript: domain.NewTranscript(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provider returns the name of the completion provider.
func (r *Relay) Provider() string { return r.completer.Name() }

// SetToolSource attaches or replaces the tool source. Only call it between
// dispatches.
func (r *Relay) SetToolSource(source ports.ToolSource) { r.source = source }

// Transcript returns a copy of the conversation so far.
func (r *Relay) Transcript() []domain.Turn { return r.transcript.Turns() }

// Dispatch runs one full exchange: it records the user turn, hands the
// conversation to the provider, and records the reply.
//
// On any failure the user turn stays in the transcript, no assistant turn is
// recorded, and the error is returned after being logged once. Surfaces
// render domain.GenericErrorReply to the user in that case.
func (r *Relay) Dispatch(ctx context.Context, input string) (string, error) {
	r.transcript.EnsureSystem(r.system)
	if err := r.transcript.Append(domain.RoleUser, input); err != nil {
		return "", err
	}

	// The listing is fetched per dispatch so servers can add or retire
	// tools between exchanges.
	var tools []domain.Tool
	if r.source != nil {
		listed, err := r.source.ListTools(ctx)
		if err != nil {
			r.logger.Error("listing tools failed", "provider", r.completer.Name(), "error", err)
			return "", fmt.Errorf("list tools failed: %w", err)
		}
		tools = listed
	}

	req := ports.CompletionRequest{
		Turns:   r.transcript.Turns(),
		Tools:   tools,
		Options: r.options,
	}
	if r.source != nil {
		req.Invoke = r.invoker(tools)
	}

	r.logger.Debug("dispatching",
		"provider", r.completer.Name(),
		"turns", len(req.Turns),
		"tools", len(tools),
	)
	r.emitDispatchStart(ctx, len(req.Turns))

	start := time.Now()
	completion, err := r.completer.Complete(ctx, req)
	duration := time.Since(start)

	if err != nil {
		r.emitDispatchEnd(ctx, "", duration, err)
		r.logger.Error("dispatch failed", "provider", r.completer.Name(), "error", err)
		return "", fmt.Errorf("dispatch failed: %w", err)
	}
	r.emitDispatchEnd(ctx, completion.Model, duration, nil)

	text := strings.TrimSpace(completion.Text)
	if err := r.transcript.Append(domain.RoleAssistant, text); err != nil {
		return "", err
	}

	r.logger.Debug("dispatch completed",
		"provider", r.completer.Name(),
		"model", completion.Model,
		"stop_reason", completion.StopReason,
		"tool_rounds", completion.ToolRounds,
		"duration", duration,
	)
	return text, nil
}

// invoker builds the callback the provider uses to execute tool calls. Each
// call runs through the interceptor, a log-only argument check against the
// declared schema, and the lifecycle hooks.
func (r *Relay) invoker(tools []domain.Tool) ports.ToolInvoker {
	declared := make(map[string]domain.Tool, len(tools))
	for _, t := range tools {
		declared[t.Name] = t
	}

	return func(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
		r.emitToolCall(ctx, call)

		if r.interceptor != nil {
			proceed, result, err := r.interceptor(ctx, call)
			if err != nil {
				return domain.ToolResult{}, fmt.Errorf("interceptor for %s: %w", call.Name, err)
			}
			if !proceed {
				r.logger.Info("tool call denied", "tool", call.Name)
				return result, nil
			}
		}

		// Violations are reported, not enforced; the server is the
		// authority on what arguments it accepts.
		if t, ok := declared[call.Name]; ok {
			if err := schema.ValidateArgs(t.InputSchema, call.Args); err != nil {
				r.logger.Warn("tool arguments failed validation", "tool", call.Name, "error", err)
			}
		}

		result, err := r.source.CallTool(ctx, call)
		if err != nil {
			r.emitToolReturn(ctx, call, nil, true)
			return domain.ToolResult{}, err
		}
		r.emitToolReturn(ctx, call, result.Content, result.IsError)
		return result, nil
	}
}
