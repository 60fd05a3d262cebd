// Package mcp connects to stdio MCP servers and exposes their tools through
// the ToolSource port.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hinaba/parley/internal/logging"
	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/ports"
)

// Client wraps one running MCP server process. It owns the subprocess for
// its whole lifetime; Close terminates it.
type Client struct {
	name   string
	info   mcp.Implementation
	logger *slog.Logger
	mcp    *client.Client
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithLogger sets a structured logger for connection and call tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClientInfo overrides the implementation identity announced during the
// initialize handshake.
func WithClientInfo(name, version string) Option {
	return func(c *Client) {
		c.info = mcp.Implementation{Name: name, Version: version}
	}
}

// Connect launches the server described by spec, performs the initialize
// handshake, and verifies the tool listing. The returned client is ready for
// CallTool. ctx bounds the handshake only, not the server's lifetime.
func Connect(ctx context.Context, name string, spec ServerSpec, opts ...Option) (*Client, error) {
	c := &Client{
		name:   name,
		info:   mcp.Implementation{Name: "parley", Version: "dev"},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	mcpClient, err := client.NewStdioMCPClient(spec.command(), spec.environ(), spec.Args...)
	if err != nil {
		return nil, fmt.Errorf("mcp: start server %q: %w", name, err)
	}
	c.mcp = mcpClient

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = c.info
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("mcp: initialize %q: %w", name, err)
	}

	tools, err := c.ListTools(ctx)
	if err != nil {
		_ = mcpClient.Close()
		return nil, err
	}
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	c.logger.Info("connected to server", "server", name, "tools", names)

	return c, nil
}

// Name returns the configured server name.
func (c *Client) Name() string { return c.name }

var _ ports.ToolSource = (*Client)(nil)

// ListTools fetches the server's current tool listing.
func (c *Client) ListTools(ctx context.Context) ([]domain.Tool, error) {
	resp, err := c.mcp.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp: list tools on %q: %w", c.name, err)
	}

	tools := make([]domain.Tool, 0, len(resp.Tools))
	for _, t := range resp.Tools {
		tools = append(tools, toolFromMCP(t))
	}
	return tools, nil
}

// CallTool executes one tool invocation and flattens the text content of the
// result. Non-text content blocks are ignored.
func (c *Client) CallTool(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = call.Name
	req.Params.Arguments = call.Args

	c.logger.Debug("calling tool", "server", c.name, "tool", call.Name)
	resp, err := c.mcp.CallTool(ctx, req)
	if err != nil {
		return domain.ToolResult{}, fmt.Errorf("mcp: call %q on %q: %w", call.Name, c.name, err)
	}
	return toolResultFromMCP(call, resp), nil
}

// Close shuts the server process down.
func (c *Client) Close() error {
	if c.mcp == nil {
		return nil
	}
	if err := c.mcp.Close(); err != nil {
		return fmt.Errorf("mcp: close %q: %w", c.name, err)
	}
	return nil
}

func toolFromMCP(t mcp.Tool) domain.Tool {
	return domain.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schemaMap(t.InputSchema),
	}
}

// schemaMap converts the typed wire schema into the loose map the providers
// expect. A schema that fails the round trip is treated as absent.
func schemaMap(s mcp.ToolInputSchema) map[string]any {
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

func toolResultFromMCP(call domain.ToolCall, resp *mcp.CallToolResult) domain.ToolResult {
	var parts []string
	for _, content := range resp.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return domain.ToolResult{
		ID:      call.ID,
		Content: strings.Join(parts, "\n"),
		IsError: resp.IsError,
	}
}
