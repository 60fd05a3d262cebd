/*
Package domain contains the core domain models for the parley relay.

It defines the conversation transcript (an ordered, append-only sequence of
role/content turns), the tool vocabulary exchanged with providers and tool
servers, and the lifecycle events used for observability. This package is kept
pure and free of external dependencies like I/O or transport, following
Hexagonal Architecture principles.

# Key Entities

  - Turn: One (role, content) element of a conversation.
  - Transcript: The in-memory, append-only conversation for a session.
  - Tool / ToolCall / ToolResult: The tool-invocation vocabulary shared by
    providers and tool sources.
  - LifecycleHooks: Callbacks fired around dispatches and tool calls.
*/
package domain
