package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hinaba/parley/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley is a chat relay between you, an LLM provider, and MCP tool servers",
	Long: `Parley relays conversations with a chat-completion provider (Anthropic or any
OpenAI-compatible endpoint) and lets the model call tools exposed by MCP
servers declared in the config file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default: parley.json, parley.yaml, mcp_client_config.json)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().String("provider", "", "Completion provider: 'anthropic' or 'openai' (overrides config)")
	rootCmd.PersistentFlags().String("model", "", "Model identifier (overrides config)")
	rootCmd.PersistentFlags().String("system", "", "System prompt (overrides config)")
}

// commonOptions collects the persistent and per-command flags shared by the
// chat-driving commands.
func commonOptions(cmd *cobra.Command) cli.Options {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	system, _ := cmd.Flags().GetString("system")
	server, _ := cmd.Flags().GetString("server")
	agent, _ := cmd.Flags().GetString("agent")
	yes, _ := cmd.Flags().GetBool("yes")

	return cli.Options{
		ConfigPath:   configPath,
		Debug:        debug,
		Provider:     provider,
		Model:        model,
		SystemPrompt: system,
		Server:       server,
		Agent:        agent,
		Yes:          yes,
	}
}
