package domain

import "fmt"

// Tool describes a callable tool advertised by a tool source.
// InputSchema is the tool's JSON Schema as a raw map, compatible with both
// the MCP listing format and the provider tool-definition formats.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

// ToolCall is a request from the model to invoke a tool.
type ToolCall struct {
	ID   string         `json:"id"` // Unique ID for this specific call (from the provider)
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// Marker renders the user-visible line that is woven into the reply text
// whenever the model invokes a tool.
func (c ToolCall) Marker() string {
	return fmt.Sprintf("[Calling tool %s with args %v]", c.Name, c.Args)
}

// ToolResult is the outcome of a tool invocation, fed back to the model.
type ToolResult struct {
	ID       string `json:"id"` // Must match the ToolCall.ID
	Content  string `json:"content,omitempty"`
	IsError  bool   `json:"is_error,omitempty"`
	IsDenied bool   `json:"is_denied,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Text returns the payload the model should see: the content on success,
// the error message otherwise.
func (r ToolResult) Text() string {
	if r.IsError && r.Error != "" {
		return r.Error
	}
	return r.Content
}
