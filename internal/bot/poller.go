package bot

// Background watchlist poller. One cycle takes a snapshot of the watchlist,
// fetches each distinct account once, and notifies every subscribing chat
// whose last observed balance differs from the fetched value.

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"near-monitor/internal/clients_api/near"
	logging "near-monitor/internal/infra/log"
	"near-monitor/internal/watchlist"
)

// BalanceFetcher is the data-source side of the poller.
type BalanceFetcher interface {
	FetchBalance(ctx context.Context, accountID string) (*big.Int, error)
}

// RunBalanceMonitor polls all watched accounts on a fixed cadence until ctx
// is cancelled. Per-account failures never stop the loop.
func RunBalanceMonitor(ctx context.Context, fetcher BalanceFetcher, notifier Notifier, store *watchlist.Store, interval time.Duration) {
	logging.LogInfo("Background monitoring task started",
		zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var cycleCount uint64
	taskStart := time.Now()

	for {
		select {
		case <-ctx.Done():
			logging.LogInfo("Background monitoring task stopped",
				zap.Uint64("cycles", cycleCount))
			return
		case <-ticker.C:
		}

		cycleCount++
		checked, changed := runPollCycle(ctx, fetcher, notifier, store)

		logging.LogDebug("Poll cycle finished",
			zap.Uint64("cycle", cycleCount),
			zap.Int("entries", checked),
			zap.Int("changes", changed))

		if cycleCount%10 == 0 {
			logging.LogInfo("Background monitor heartbeat",
				zap.Uint64("cycle", cycleCount),
				zap.Int64("uptime_mins", int64(time.Since(taskStart).Minutes())),
				zap.Int("active_entries", checked))
		}
	}
}

// runPollCycle executes one full sweep over a snapshot of the watchlist.
// Registry mutations made while the sweep runs are honored next cycle.
func runPollCycle(ctx context.Context, fetcher BalanceFetcher, notifier Notifier, store *watchlist.Store) (checked, changed int) {
	entries := store.Snapshot()

	// Fetch each distinct account once; every subscribing entry still gets
	// its own notification and balance update below.
	balances := make(map[string]*big.Int)
	failed := make(map[string]struct{})
	for _, entry := range entries {
		if ctx.Err() != nil {
			return len(entries), changed
		}
		if _, ok := balances[entry.AccountID]; ok {
			continue
		}
		if _, ok := failed[entry.AccountID]; ok {
			continue
		}

		balance, err := fetcher.FetchBalance(ctx, entry.AccountID)
		if err != nil {
			logging.LogError("Error fetching balance",
				zap.String("account", entry.AccountID), zap.Error(err))
			failed[entry.AccountID] = struct{}{}
			continue
		}
		balances[entry.AccountID] = balance
	}

	for _, entry := range entries {
		current, ok := balances[entry.AccountID]
		if !ok {
			// Fetch failed this cycle, the entry stays untouched and is
			// retried on the next tick.
			continue
		}

		if entry.LastBalance != nil && entry.LastBalance.Cmp(current) == 0 {
			continue
		}

		logging.LogInfo("Balance change detected",
			zap.String("account", entry.AccountID),
			zap.Int64("chat_id", entry.ChatID),
			zap.String("new", current.String()))

		if err := notifier.Deliver(entry.ChatID, formatBalanceAlert(entry, current)); err != nil {
			// The update below still happens, a lost alert must not cause
			// a duplicate one next cycle.
			logging.LogError("Failed to send alert",
				zap.Int64("chat_id", entry.ChatID), zap.Error(err))
		}

		store.UpdateBalance(entry.AccountID, entry.ChatID, watchlist.AmountOf(current))
		changed++
	}

	return len(entries), changed
}

func formatBalanceAlert(entry watchlist.Entry, current *big.Int) string {
	old := "Unknown"
	if entry.LastBalance != nil {
		old = near.FormatNEAR(&entry.LastBalance.Int)
	}
	return fmt.Sprintf("🚨 Balance Update for %s!\n\nOld: %s\nNew: %s",
		entry.AccountID, old, near.FormatNEAR(current))
}
