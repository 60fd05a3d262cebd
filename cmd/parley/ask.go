package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hinaba/parley/internal/cli"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Send a single query and print the reply",
	Long: `Performs one dispatch and prints the assistant's reply to stdout.
Tool calls are auto-approved. On failure the generic error line goes to
stderr and the command exits 1.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")
		if err := cli.RunAsk(commonOptions(cmd), query); err != nil {
			// RunAsk already printed the user-facing line.
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().String("server", "", "MCP server key from the config file to connect")
	askCmd.Flags().String("agent", "", "Agent profile from the config file to apply")
}
