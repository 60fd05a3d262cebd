package cli

import (
	"context"
	"fmt"

	"github.com/hinaba/parley"
	"github.com/hinaba/parley/pkg/adapters/mcp"
)

// RunTools connects to the named MCP server and prints its tool listing.
func RunTools(opts Options) error {
	logger := createLogger(opts.Debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	spec, err := cfg.ResolveServer(opts.Server)
	if err != nil {
		return err
	}

	client, err := mcp.Connect(sigCtx, opts.Server, spec,
		mcp.WithLogger(logger),
		mcp.WithClientInfo("parley", parley.Version),
	)
	if err != nil {
		return fmt.Errorf("connect to server %q: %w", opts.Server, err)
	}
	defer client.Close()

	tools, err := client.ListTools(sigCtx)
	if err != nil {
		return err
	}

	printSystemMessage("Server '%s' advertises %d tool(s).", opts.Server, len(tools))
	for _, line := range describeTools(tools) {
		fmt.Println("  " + line)
	}
	return nil
}
