// Package config loads the parley configuration file and resolves the
// settings the commands need: provider credentials, generation defaults,
// MCP server specs, and named agent profiles.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/hinaba/parley/pkg/adapters/mcp"
	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/ports"
)

// DefaultFiles are probed in order when no --config flag is given.
// mcp_client_config.json is the legacy name kept for existing setups.
var DefaultFiles = []string{"parley.json", "parley.yaml", "mcp_client_config.json"}

// Agent is a named preset applied with --agent. Options carries free-form
// generation parameters decoded into ports.CompletionOptions on demand.
type Agent struct {
	Provider     string         `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model        string         `json:"model,omitempty" yaml:"model,omitempty"`
	SystemPrompt string         `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	Options      map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// CompletionOptions decodes the free-form Options map into typed completion
// parameters. The profile's Model wins over an options entry of the same name.
func (a Agent) CompletionOptions() (ports.CompletionOptions, error) {
	var opts ports.CompletionOptions
	if len(a.Options) > 0 {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &opts,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return opts, fmt.Errorf("build options decoder: %w", err)
		}
		if err := decoder.Decode(a.Options); err != nil {
			return opts, fmt.Errorf("decode agent options: %w", err)
		}
	}
	if a.Model != "" {
		opts.Model = a.Model
	}
	return opts, nil
}

// Config is the on-disk configuration. All fields are optional; flags and
// environment variables fill the gaps.
type Config struct {
	Provider     string                    `json:"provider,omitempty" yaml:"provider,omitempty"`
	APIKey       string                    `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL      string                    `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model        string                    `json:"model,omitempty" yaml:"model,omitempty"`
	MaxTokens    int                       `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature  *float64                  `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	SystemPrompt string                    `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	MCPServers   map[string]mcp.ServerSpec `json:"mcpServers,omitempty" yaml:"mcpServers,omitempty"`
	Agents       map[string]Agent          `json:"agents,omitempty" yaml:"agents,omitempty"`
}

// Load reads the file at path. The format follows the extension: .yaml/.yml
// parse as YAML, everything else as JSON. A path the user named explicitly
// must exist; use Discover for the optional default files.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse YAML config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse JSON config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Discover probes DefaultFiles under dir and loads the first one present.
// No file at all is not an error: callers get a zero config and an empty
// path. A file that exists but fails to parse is an error.
func Discover(dir string) (*Config, string, error) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			return nil, path, err
		}
		return cfg, path, nil
	}
	return &Config{}, "", nil
}

// ResolveServer looks up the launch spec for a server key.
func (c *Config) ResolveServer(key string) (mcp.ServerSpec, error) {
	spec, ok := c.MCPServers[key]
	if !ok {
		return mcp.ServerSpec{}, fmt.Errorf("%w: %q in config file", domain.ErrServerNotFound, key)
	}
	return spec, nil
}

// ResolveAgent looks up a named agent profile.
func (c *Config) ResolveAgent(name string) (Agent, error) {
	agent, ok := c.Agents[name]
	if !ok {
		return Agent{}, fmt.Errorf("agent %q not found in config file", name)
	}
	return agent, nil
}
