package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hinaba/parley/pkg/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "parley.json", `{
		"provider": "openai",
		"model": "gpt-4o-mini",
		"max_tokens": 500,
		"mcpServers": {
			"weather": {"command": "node", "args": ["build/index.js"], "env": {"DEBUG": "1"}}
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 500, cfg.MaxTokens)

	spec, err := cfg.ResolveServer("weather")
	require.NoError(t, err)
	assert.Equal(t, "node", spec.Command)
	assert.Equal(t, []string{"build/index.js"}, spec.Args)
	assert.Equal(t, "1", spec.Env["DEBUG"])
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "parley.yaml", `
provider: anthropic
system_prompt: Be concise.
agents:
  reviewer:
    model: claude-3-5-sonnet-20241022
    system_prompt: You review code.
    options:
      max_tokens: 2000
      temperature: 0.2
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "Be concise.", cfg.SystemPrompt)

	agent, err := cfg.ResolveAgent("reviewer")
	require.NoError(t, err)
	assert.Equal(t, "You review code.", agent.SystemPrompt)

	opts, err := agent.CompletionOptions()
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-20241022", opts.Model)
	assert.Equal(t, 2000, opts.MaxTokens)
	require.NotNil(t, opts.Temperature)
	assert.InDelta(t, 0.2, *opts.Temperature, 0.001)
}

func TestLoadBrokenFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "parley.json", `{not json`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	t.Run("no file yields zero config", func(t *testing.T) {
		cfg, path, err := Discover(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Empty(t, cfg.Provider)
	})

	t.Run("legacy filename is honored", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "mcp_client_config.json", `{"mcpServers": {"files": {"command": "npx"}}}`)

		cfg, path, err := Discover(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "mcp_client_config.json"), path)

		spec, err := cfg.ResolveServer("files")
		require.NoError(t, err)
		assert.Equal(t, "npx", spec.Command)
	})

	t.Run("parley.json wins over the legacy name", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "parley.json", `{"provider": "openai"}`)
		writeFile(t, dir, "mcp_client_config.json", `{"provider": "anthropic"}`)

		cfg, _, err := Discover(dir)
		require.NoError(t, err)
		assert.Equal(t, "openai", cfg.Provider)
	})

	t.Run("broken default file is an error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "parley.yaml", "provider: [broken")

		_, _, err := Discover(dir)
		assert.Error(t, err)
	})
}

func TestResolveServerUnknownKey(t *testing.T) {
	empty := &Config{}
	_, err := empty.ResolveServer("ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServerNotFound))
	assert.Contains(t, err.Error(), "ghost")
}
