package runner

import (
	"context"

	"github.com/hinaba/parley/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents a reply turn to the user.
	Output(ctx context.Context, turn domain.Turn) error

	// Input reads a query from the user.
	Input(ctx context.Context) (string, error)

	// Signal notifies the handler of an event (e.g. "thinking", "typing").
	// This is used for visual feedback without blocking input.
	Signal(ctx context.Context, name string, args map[string]any) error

	// SystemOutput presents a meta-message to the user (e.g. status updates,
	// confirmation prompts). This is distinct from reply rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// Chatter is the session surface the runner drives. It is satisfied by
// parley.Session, which keeps the loop decoupled from the root package.
type Chatter interface {
	Send(ctx context.Context, input string) (string, error)
}
