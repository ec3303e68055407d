package commands

// One-shot balance query.

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"near-monitor/internal/clients_api/near"
	"near-monitor/internal/infra/config"
	"near-monitor/internal/infra/log"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <account_id>",
	Short: "Query and display the current balance of an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runBalance,
}

func init() {
	withConfigFlags(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	accountID := args[0]
	log.LogInfo("Fetching balance", zap.String("account", accountID))

	client := newNearClient(cfg)
	balance, err := client.FetchBalance(context.Background(), accountID)
	if err != nil {
		return fmt.Errorf("failed to fetch balance for %s: %w", accountID, err)
	}

	printBalance(accountID, balance)
	return nil
}

func printBalance(accountID string, balance *big.Int) {
	fmt.Printf("[%s] %s — %s\n", near.NowTimestamp(), accountID, near.FormatNEAR(balance))
}

func newNearClient(cfg *config.Config) *near.Client {
	return near.NewClient(near.Options{
		RPCURL:         cfg.Near.RPCURL,
		NearblocksURL:  cfg.Near.NearblocksURL,
		RequestTimeout: time.Duration(cfg.Near.RequestTimeout) * time.Second,
		MaxRetries:     cfg.Near.MaxRetries,
	})
}
