package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hinaba/parley/internal/cli"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long: `Starts the HTTP server: the browser chat widget at /, the relay API under
/api, the OpenAPI contract at /openapi.yaml, and Prometheus metrics at
/metrics. Each browser session gets its own conversation.`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")

		if err := cli.RunServe(commonOptions(cmd), addr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("server", "", "MCP server key every session connects to")
}
