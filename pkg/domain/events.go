package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDispatchStart EventType = "dispatch_start"
	EventDispatchEnd   EventType = "dispatch_end"
	EventToolCall      EventType = "tool_call"
	EventToolReturn    EventType = "tool_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// DispatchEvent represents one completion exchange with a provider.
type DispatchEvent struct {
	EventBase
	Provider string        `json:"provider"`
	Model    string        `json:"model,omitempty"`
	Turns    int           `json:"turns"` // transcript length at dispatch time
	Duration time.Duration `json:"duration,omitempty"`
	Err      string        `json:"err,omitempty"`
}

// ToolEvent represents a tool invocation requested by the model.
type ToolEvent struct {
	EventBase
	ToolName string `json:"tool_name"`
	Input    any    `json:"input,omitempty"`
	Output   any    `json:"output,omitempty"`
	IsError  bool   `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for relay observability.
type LifecycleHooks struct {
	OnDispatchStart func(context.Context, *DispatchEvent)
	OnDispatchEnd   func(context.Context, *DispatchEvent)
	OnToolCall      func(context.Context, *ToolEvent)
	OnToolReturn    func(context.Context, *ToolEvent)
}
