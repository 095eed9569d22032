package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/barista"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of barista",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "barista version %s\n", strings.TrimSpace(barista.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
