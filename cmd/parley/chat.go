package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hinaba/parley/internal/cli"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Starts the interactive query loop. Type 'quit' to exit.

With --server, the named MCP server from the config file is launched and its
tools are offered to the model; each tool call asks for confirmation unless
--yes is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.RunChat(commonOptions(cmd)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("server", "", "MCP server key from the config file to connect")
	chatCmd.Flags().String("agent", "", "Agent profile from the config file to apply")
	chatCmd.Flags().BoolP("yes", "y", false, "Auto-approve tool calls")

	// Make 'chat' the default when no subcommand is given.
	rootCmd.Run = chatCmd.Run
}
