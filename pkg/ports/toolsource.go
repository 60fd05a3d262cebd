package ports

import (
	"context"

	"github.com/hinaba/parley/pkg/domain"
)

// ToolSource defines where tools come from and how they are invoked.
// The MCP stdio client is the primary implementation.
type ToolSource interface {
	// ListTools returns the tools the source currently advertises.
	// It is called fresh on every dispatch.
	ListTools(ctx context.Context) ([]domain.Tool, error)

	// CallTool invokes one tool and returns its result. Tool-level failures
	// are reported inside the ToolResult; a non-nil error means the source
	// itself failed (transport down, subprocess gone).
	CallTool(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error)

	// Close releases the source (terminates the server subprocess).
	Close() error
}
