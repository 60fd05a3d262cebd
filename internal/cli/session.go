package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hinaba/parley"
	"github.com/hinaba/parley/internal/config"
	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/ports"
)

// Options are the settings shared by every command. Flag values override the
// config file; the config file overrides the built-in defaults.
type Options struct {
	ConfigPath   string // --config; empty means probe the default files
	Debug        bool   // --debug
	Provider     string // --provider
	Model        string // --model
	SystemPrompt string // --system
	Server       string // --server: mcpServers key to connect
	Agent        string // --agent: named profile from the config file
	Yes          bool   // --yes: auto-approve tool calls
}

// loadConfig resolves the configuration file for the command.
func loadConfig(opts Options) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	cfg, _, err := config.Discover(".")
	return cfg, err
}

// buildSession assembles a parley session from config and flags, and
// connects the requested MCP server. Extra options (interceptors, hooks)
// come last so they win over the config-derived ones.
func buildSession(ctx context.Context, opts Options, logger *slog.Logger, extra ...parley.Option) (*parley.Session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	provider := firstNonEmpty(opts.Provider, cfg.Provider, "anthropic")
	model := firstNonEmpty(opts.Model, cfg.Model)
	system := firstNonEmpty(opts.SystemPrompt, cfg.SystemPrompt)

	var agentOpts *ports.CompletionOptions
	if opts.Agent != "" {
		agent, err := cfg.ResolveAgent(opts.Agent)
		if err != nil {
			return nil, err
		}
		provider = firstNonEmpty(opts.Provider, agent.Provider, provider)
		system = firstNonEmpty(opts.SystemPrompt, agent.SystemPrompt, system)
		decoded, err := agent.CompletionOptions()
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", opts.Agent, err)
		}
		agentOpts = &decoded
	}

	sessionOpts := []parley.Option{
		parley.WithLogger(logger),
		parley.WithAPIKey(cfg.APIKey),
		parley.WithBaseURL(cfg.BaseURL),
		parley.WithModel(model),
		parley.WithMaxTokens(cfg.MaxTokens),
		parley.WithSystemPrompt(system),
	}
	if cfg.Temperature != nil {
		sessionOpts = append(sessionOpts, parley.WithTemperature(*cfg.Temperature))
	}
	if agentOpts != nil {
		sessionOpts = append(sessionOpts, parley.WithCompletionOptions(*agentOpts))
	}
	if opts.Debug {
		sessionOpts = append(sessionOpts, parley.WithLifecycleHooks(createDebugHooks(logger)))
	}
	sessionOpts = append(sessionOpts, extra...)

	session, err := parley.New(provider, sessionOpts...)
	if err != nil {
		return nil, err
	}

	if opts.Server != "" {
		spec, err := cfg.ResolveServer(opts.Server)
		if err != nil {
			_ = session.Close()
			return nil, err
		}
		if err := session.Connect(ctx, opts.Server, spec); err != nil {
			_ = session.Close()
			return nil, fmt.Errorf("connect to server %q: %w", opts.Server, err)
		}
	}

	return session, nil
}

// describeTools renders one line per tool for the tools command and the
// chat connect message.
func describeTools(tools []domain.Tool) []string {
	lines := make([]string, 0, len(tools))
	for _, t := range tools {
		if t.Description != "" {
			lines = append(lines, fmt.Sprintf("%s - %s", t.Name, t.Description))
		} else {
			lines = append(lines, t.Name)
		}
	}
	return lines
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
