package commands

// Root command for the Cobra CLI.
// Registers all subcommands (balance, monitor, bot, txs).

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"near-monitor/internal/infra/config"
)

var rootCmd = &cobra.Command{
	Use:   "near-monitor",
	Short: "NEAR Protocol balance monitor - CLI queries and Telegram bot",
	Long: `NEAR Balance Monitor checks NEAR Protocol account balances from the
command line, watches a single account for changes, or runs a multi-user
Telegram bot with per-chat watchlists and balance change alerts.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

// withConfigFlags attaches the shared configuration flags to a command.
func withConfigFlags(cmd *cobra.Command) *pflag.FlagSet {
	config.RegisterFlags(cmd.Flags())
	return cmd.Flags()
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(txsCmd)
}
