package relay

import (
	"context"
	"time"

	"github.com/hinaba/parley/pkg/domain"
)

func (r *Relay) emitDispatchStart(ctx context.Context, turns int) {
	if r.hooks.OnDispatchStart == nil {
		return
	}
	r.hooks.OnDispatchStart(ctx, &domain.DispatchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDispatchStart},
		Provider:  r.completer.Name(),
		Turns:     turns,
	})
}

func (r *Relay) emitDispatchEnd(ctx context.Context, model string, duration time.Duration, err error) {
	if r.hooks.OnDispatchEnd == nil {
		return
	}
	ev := &domain.DispatchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDispatchEnd},
		Provider:  r.completer.Name(),
		Model:     model,
		Duration:  duration,
	}
	if err != nil {
		ev.Err = err.Error()
	}
	r.hooks.OnDispatchEnd(ctx, ev)
}

func (r *Relay) emitToolCall(ctx context.Context, call domain.ToolCall) {
	if r.hooks.OnToolCall == nil {
		return
	}
	r.hooks.OnToolCall(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventToolCall},
		ToolName:  call.Name,
		Input:     call.Args,
	})
}

func (r *Relay) emitToolReturn(ctx context.Context, call domain.ToolCall, output any, isError bool) {
	if r.hooks.OnToolReturn == nil {
		return
	}
	r.hooks.OnToolReturn(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventToolReturn},
		ToolName:  call.Name,
		Input:     call.Args,
		Output:    output,
		IsError:   isError,
	})
}
