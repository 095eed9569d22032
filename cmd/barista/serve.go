package main

import (
	"github.com/aretw0/barista/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Hosts ordering sessions over a JSON API. Each POST /sessions opens a
session; actions go to /sessions/{id}/actions and changes stream from
/sessions/{id}/events.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, debug := globalFlags(cmd)
		addr, _ := cmd.Flags().GetString("addr")

		return cli.Serve(cli.ServeOptions{
			ConfigPath: configPath,
			Debug:      debug,
			Addr:       addr,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides http.addr)")
}
