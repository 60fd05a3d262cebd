package ports

import (
	"context"

	"github.com/hinaba/parley/pkg/domain"
)

// ToolInterceptor inspects a tool call before it executes. Returning
// proceed=false short-circuits execution and feeds the returned result to
// the model instead; a non-nil error aborts the dispatch.
type ToolInterceptor func(ctx context.Context, call domain.ToolCall) (proceed bool, result domain.ToolResult, err error)
