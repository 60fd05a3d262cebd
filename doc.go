/*
Package parley relays conversations between a user, a chat-completion
provider, and MCP tool servers.

It keeps an append-only transcript per session, hands the whole conversation
to the provider on every dispatch, and executes the tool calls the model
requests through stdio MCP servers. The core is deliberately small: one
outstanding completion at a time, a single attempt per request, and a uniform
error policy in which failures are logged once and surfaced to the user as a
single generic line.

# Concept

A Session owns one conversation. The first Send lazily inserts the system
turn (when a system prompt is configured), then appends the user turn,
forwards the transcript, and appends exactly one assistant turn on success.
On failure the user turn stays, no assistant turn is added, and the same
conversation remains usable for the next Send. This Hexagonal Architecture
keeps the relay decoupled from adapters (providers, tool servers, UI), so it
can be embedded in any interface: CLI, HTTP server, or another Go program.

# Key Features

  - Append-only transcript: system/user/assistant turns, system always first.
  - Provider adapters: Anthropic (official SDK) and any OpenAI-compatible
    chat-completions endpoint.
  - MCP tools: stdio servers declared under "mcpServers" in the config file;
    tool listings are fetched fresh on every dispatch.
  - Tool interceptors: confirmation prompts or policies that can deny a call
    before it reaches the server.
  - Lifecycle hooks for observability (dispatch and tool events).

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/hinaba/parley"
	)

	func main() {
		session, err := parley.New("anthropic",
			parley.WithSystemPrompt("You are a concise assistant."),
		)
		if err != nil {
			log.Fatal(err)
		}
		defer session.Close()

		reply, err := session.Send(context.Background(), "Say hello.")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply)
	}

To expose MCP tools to the model, connect a server before chatting:

	err = session.Connect(ctx, "weather", mcp.ServerSpec{
		Command: "node",
		Args:    []string{"build/index.js"},
	})

See the examples directory for complete programs, including the interactive
terminal loop and the HTTP widget server.
*/
package parley
