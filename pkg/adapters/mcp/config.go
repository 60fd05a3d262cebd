package mcp

import (
	"fmt"
	"sort"
)

// DefaultCommand launches node-based servers, the most common packaging for
// MCP tooling.
const DefaultCommand = "node"

// ServerSpec describes how to launch one stdio MCP server. It mirrors the
// per-server entries under the "mcpServers" key of the client config file.
type ServerSpec struct {
	Command string            `json:"command,omitempty" yaml:"command,omitempty" mapstructure:"command"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty" mapstructure:"env"`
}

// command returns the binary to launch, falling back to DefaultCommand.
func (s ServerSpec) command() string {
	if s.Command == "" {
		return DefaultCommand
	}
	return s.Command
}

// environ renders the Env map as KEY=VALUE pairs in a stable order.
func (s ServerSpec) environ() []string {
	if len(s.Env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, s.Env[k]))
	}
	return env
}
