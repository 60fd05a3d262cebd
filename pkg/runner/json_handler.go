package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/hinaba/parley/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines
// communication, suited to headless or programmatic callers.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// jsonEvent is the line format emitted by the handler.
type jsonEvent struct {
	Type    string `json:"type"`
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
	Name    string `json:"name,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Output emits the turn as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, turn domain.Turn) error {
	return h.Encoder.Encode(jsonEvent{
		Type:    "turn",
		Role:    string(turn.Role),
		Content: turn.Content,
	})
}

// Input reads a line, accepting either a JSON string or raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && text == "" {
		return "", err
	}

	text = strings.TrimSpace(text)

	// Try to unquote if it's a JSON string
	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}

	// Structured callers get the error back instead of a retry prompt.
	return SanitizeInput(text)
}

// Signal emits the event as a JSON line so machine consumers can track progress.
func (h *JSONHandler) Signal(ctx context.Context, name string, args map[string]any) error {
	return h.Encoder.Encode(jsonEvent{Type: "signal", Name: name})
}

// SystemOutput emits a meta-message as a JSON line.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(jsonEvent{Type: "system", Message: msg})
}
