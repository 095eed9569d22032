package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "barista",
	Short: "Barista takes café orders through a guided conversation",
	Long: `Barista walks a customer from greeting to confirmed order: name, menu,
items, quantities, checkout. Confirmed lines go to the configured order sink.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a barista.yaml config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// globalFlags reads the persistent flags shared by every command.
func globalFlags(cmd *cobra.Command) (configPath string, debug bool) {
	configPath, _ = cmd.Flags().GetString("config")
	debug, _ = cmd.Flags().GetBool("debug")
	return configPath, debug
}
