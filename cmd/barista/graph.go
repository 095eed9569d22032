package main

import (
	"github.com/aretw0/barista/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the ordering flow as a Mermaid diagram",
	Long: `Prints the step graph (graph TD). With --session, the session is read
from the configured session store and its current step is highlighted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := globalFlags(cmd)
		sessionID, _ := cmd.Flags().GetString("session")
		return cli.PrintGraph(cmd.Context(), cmd.OutOrStdout(), configPath, sessionID)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the step of a stored session")
}
