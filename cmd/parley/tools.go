package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hinaba/parley/internal/cli"
)

// toolsCmd represents the tools command
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools an MCP server advertises",
	Long:  `Launches the named MCP server from the config file and prints its tool listing.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := commonOptions(cmd)
		if opts.Server == "" {
			fmt.Fprintln(os.Stderr, "Error: --server is required")
			os.Exit(1)
		}
		if err := cli.RunTools(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)

	toolsCmd.Flags().String("server", "", "MCP server key from the config file")
}
