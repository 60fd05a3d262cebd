/*
Package ports defines the driven ports (interfaces) for the parley relay.

These interfaces decouple the dispatch loop from external implementations,
allowing the relay to work with different completion providers and tool
backends.

# Key Interfaces

  - Completer: Responsible for one completion exchange with an LLM provider,
    including the provider's tool round trips.
  - ToolSource: Responsible for listing and invoking tools (e.g. an MCP
    server subprocess).
*/
package ports
