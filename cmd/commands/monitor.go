package commands

// Single-account monitor mode: poll one account on an interval and print
// every detected balance change until interrupted.

import (
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"near-monitor/internal/clients_api/near"
	"near-monitor/internal/infra/config"
	"near-monitor/internal/infra/log"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <account_id>",
	Short: "Monitor one account's balance for changes over time",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonitor,
}

func init() {
	monitorCmd.Flags().Int("interval", 10, "Polling interval in seconds")
	withConfigFlags(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	accountID := args[0]
	interval, _ := cmd.Flags().GetInt("interval")
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %d", interval)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := newNearClient(cfg)

	log.LogInfo("Monitor started",
		zap.String("account", accountID), zap.Int("interval_secs", interval))
	fmt.Printf("Monitoring %s every %ds...\n", accountID, interval)

	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	var previous *big.Int
	var pollCount, successCount, errorCount uint64
	startTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			log.LogInfo("Monitor stopped",
				zap.String("account", accountID), zap.Uint64("polls", pollCount))
			return nil
		case <-ticker.C:
		}

		pollCount++
		log.LogDebug("Monitor poll",
			zap.String("account", accountID), zap.Uint64("poll_count", pollCount))

		balance, err := client.FetchBalance(ctx, accountID)
		if err != nil {
			errorCount++
			log.LogError("Monitor fetch failed",
				zap.String("account", accountID), zap.Error(err))
			fmt.Fprintf(os.Stderr, "[%s] Error: %v\n", near.NowTimestamp(), err)
		} else {
			successCount++
			if previous == nil || previous.Cmp(balance) != 0 {
				log.LogInfo("Balance changed",
					zap.String("account", accountID),
					zap.String("new", balance.String()))
				printBalance(accountID, balance)
				previous = balance
			}
		}

		if pollCount%10 == 0 {
			log.LogInfo("Monitor heartbeat",
				zap.String("account", accountID),
				zap.Int64("uptime_secs", int64(time.Since(startTime).Seconds())),
				zap.Uint64("polls", pollCount),
				zap.Uint64("success", successCount),
				zap.Uint64("errors", errorCount))
		}
	}
}
