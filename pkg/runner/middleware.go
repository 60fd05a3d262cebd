package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/ports"
)

// MultiInterceptor chains multiple interceptors. The first denial or error
// stops the chain.
func MultiInterceptor(interceptors ...ports.ToolInterceptor) ports.ToolInterceptor {
	return func(ctx context.Context, call domain.ToolCall) (bool, domain.ToolResult, error) {
		for _, interceptor := range interceptors {
			allowed, result, err := interceptor(ctx, call)
			if err != nil {
				return false, domain.ToolResult{}, err
			}
			if !allowed {
				return false, result, nil
			}
		}
		return true, domain.ToolResult{}, nil
	}
}

// ConfirmationMiddleware prompts the user via the provided Handler before allowing
// a tool to execute. It is "aware" of the IOHandler to use its Input/SystemOutput
// methods, but keeps the policy logic separate. A denial is fed back to the model
// as an error result rather than aborting the dispatch.
func ConfirmationMiddleware(handler IOHandler) ports.ToolInterceptor {
	return func(ctx context.Context, call domain.ToolCall) (bool, domain.ToolResult, error) {
		prompt := fmt.Sprintf("Tool Request: '%s' (ID: %s)\nArgs: %v\nAllow execution? [y/N]", call.Name, call.ID, call.Args)
		if err := handler.SystemOutput(ctx, prompt); err != nil {
			return false, domain.ToolResult{}, err
		}

		input, err := handler.Input(ctx)
		if err != nil {
			return false, domain.ToolResult{}, err
		}

		input = strings.TrimSpace(strings.ToLower(input))
		if input == "y" || input == "yes" {
			return true, domain.ToolResult{}, nil
		}

		return false, domain.ToolResult{
			ID:      call.ID,
			IsError: true,
			Error:   "User denied execution by policy",
		}, nil
	}
}

// AutoApproveMiddleware allows everything.
func AutoApproveMiddleware() ports.ToolInterceptor {
	return func(ctx context.Context, call domain.ToolCall) (bool, domain.ToolResult, error) {
		return true, domain.ToolResult{}, nil
	}
}

// ResolveInterceptor picks the execution policy for a handler.
// Headless mode auto-approves; interactive mode asks the user.
func ResolveInterceptor(handler IOHandler, headless bool) ports.ToolInterceptor {
	if headless || handler == nil {
		return AutoApproveMiddleware()
	}
	return ConfirmationMiddleware(handler)
}
