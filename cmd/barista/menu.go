package main

import (
	"github.com/aretw0/barista/internal/cli"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Print the configured menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := globalFlags(cmd)
		asYAML, _ := cmd.Flags().GetBool("yaml")
		return cli.PrintMenu(cmd.OutOrStdout(), configPath, asYAML)
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List confirmed order lines stored by the sink",
	Long:  `Reads back the csv, redis or memory sink. Postgres and AMQP sinks are write-only here.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := globalFlags(cmd)
		return cli.PrintOrders(cmd.Context(), cmd.OutOrStdout(), configPath)
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(ordersCmd)

	menuCmd.Flags().Bool("yaml", false, "Print in the menu file format")
}
