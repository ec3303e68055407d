package commands

// Transaction history lookup.

import (
	"context"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"near-monitor/internal/clients_api/near"
	"near-monitor/internal/infra/config"
	"near-monitor/internal/infra/log"
)

var txsCmd = &cobra.Command{
	Use:   "txs <account_id>",
	Short: "Fetch and display recent transactions of an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxs,
}

func init() {
	withConfigFlags(txsCmd)
}

func runTxs(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	accountID := args[0]
	log.LogInfo("Fetching transactions", zap.String("account", accountID))

	client := newNearClient(cfg)
	txs, err := client.FetchTransactions(context.Background(), accountID)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions for %s: %w", accountID, err)
	}

	if len(txs) == 0 {
		log.LogWarn("No transactions found", zap.String("account", accountID))
		fmt.Printf("No transactions found for %s\n", accountID)
		return nil
	}

	fmt.Printf("Last transactions for %s:\n", accountID)
	for _, tx := range txs {
		deposit, _ := new(big.Float).SetFloat64(tx.ActionsAgg.Deposit).Int(nil)
		fmt.Printf("- Time:   %s\n  Hash:   %s\n  From:   %s\n  To:     %s\n  Amount: %s\n\n",
			near.FormatBlockTimestamp(tx.BlockTimestamp),
			tx.Hash,
			tx.SignerID,
			tx.ReceiverID,
			near.FormatNEAR(deposit))
	}

	return nil
}
