package bot

// Telegram command handler. Every inbound message is processed in its own
// goroutine; all coordination happens through the internally synchronized
// store and registry.

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"near-monitor/internal/clients_api/near"
	logging "near-monitor/internal/infra/log"
	"near-monitor/internal/watchlist"
)

const welcomeText = "Welcome to the NEAR Balance Monitor Bot! Use /help to see available commands."

const helpText = "These commands are supported:\n" +
	"/balance <account_id> - fetch balance of an account\n" +
	"/add <account_id> - add an account to monitor\n" +
	"/remove <account_id> - remove an account from monitoring\n" +
	"/edit <old_id> <new_id> - change a monitored account ID\n" +
	"/list - list monitored accounts\n" +
	"/trxs <account_id> - list last 10 transactions\n" +
	"/help - display this text"

// RunCommandHandler consumes Telegram updates until ctx is cancelled.
func RunCommandHandler(ctx context.Context, api *tgbotapi.BotAPI, client *near.Client, store *watchlist.Store, registry *watchlist.Registry) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := api.GetUpdatesChan(u)
	logging.LogInfo("Command handler started", zap.String("username", api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			logging.LogInfo("Command handler stopped")
			return
		case update, ok := <-updates:
			if !ok {
				logging.LogWarn("Updates channel closed, command handler exiting")
				return
			}
			if update.Message == nil {
				continue
			}
			go handleMessage(ctx, api, client, store, registry, update.Message)
		}
	}
}

func handleMessage(ctx context.Context, api *tgbotapi.BotAPI, client *near.Client, store *watchlist.Store, registry *watchlist.Registry, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if registry.Register(chatID) {
		logging.LogInfo("New user registered", zap.Int64("chat_id", chatID))
	}

	if !msg.IsCommand() {
		return
	}

	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	logging.LogDebug("Received command",
		zap.String("command", command),
		zap.String("args", args),
		zap.Int64("chat_id", chatID))

	switch command {
	case "start":
		reply(api, chatID, welcomeText)

	case "help":
		reply(api, chatID, helpText)

	case "balance":
		handleBalanceCommand(ctx, api, client, chatID, args)

	case "add":
		handleAddCommand(api, store, chatID, args)

	case "remove", "delete":
		handleRemoveCommand(api, store, chatID, args)

	case "edit":
		handleEditCommand(api, store, chatID, args)

	case "list":
		handleListCommand(api, store, chatID)

	case "trxs":
		handleTrxsCommand(ctx, api, client, chatID, args)
	}
}

func handleBalanceCommand(ctx context.Context, api *tgbotapi.BotAPI, client *near.Client, chatID int64, accountID string) {
	if accountID == "" {
		reply(api, chatID, "Please provide an account ID. Usage: /balance <account_id>")
		return
	}

	balance, err := client.FetchBalance(ctx, accountID)
	if err != nil {
		logging.LogError("Balance command failed",
			zap.Int64("chat_id", chatID), zap.String("account", accountID), zap.Error(err))
		reply(api, chatID, fmt.Sprintf("Error fetching balance: %v", err))
		return
	}

	reply(api, chatID, fmt.Sprintf("Balance for %s: %s", accountID, near.FormatNEAR(balance)))
}

func handleAddCommand(api *tgbotapi.BotAPI, store *watchlist.Store, chatID int64, accountID string) {
	if accountID == "" {
		reply(api, chatID, "Please provide an account ID. Usage: /add <account_id>")
		return
	}

	if store.Add(accountID, chatID) {
		reply(api, chatID, fmt.Sprintf("Added %s to monitoring list.", accountID))
	} else {
		reply(api, chatID, fmt.Sprintf("%s is already being monitored.", accountID))
	}
}

func handleRemoveCommand(api *tgbotapi.BotAPI, store *watchlist.Store, chatID int64, accountID string) {
	if accountID == "" {
		reply(api, chatID, "Please provide an account ID. Usage: /remove <account_id>")
		return
	}

	if store.Remove(accountID, chatID) {
		reply(api, chatID, fmt.Sprintf("Removed %s from monitoring list.", accountID))
	} else {
		reply(api, chatID, fmt.Sprintf("Account %s was not found.", accountID))
	}
}

func handleEditCommand(api *tgbotapi.BotAPI, store *watchlist.Store, chatID int64, args string) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		reply(api, chatID, "Usage: /edit <old_id> <new_id>")
		return
	}
	oldID, newID := parts[0], parts[1]

	if err := store.Rename(oldID, chatID, newID); err != nil {
		if errors.Is(err, watchlist.ErrNotFound) {
			reply(api, chatID, fmt.Sprintf("Account %s was not found.", oldID))
			return
		}
		reply(api, chatID, fmt.Sprintf("Error updating account: %v", err))
		return
	}

	reply(api, chatID, fmt.Sprintf("Updated %s to %s.", oldID, newID))
}

func handleListCommand(api *tgbotapi.BotAPI, store *watchlist.Store, chatID int64) {
	entries := store.ListFor(chatID)
	if len(entries) == 0 {
		reply(api, chatID, "You are not monitoring any accounts.")
		return
	}

	accounts := make([]string, 0, len(entries))
	for _, e := range entries {
		accounts = append(accounts, e.AccountID)
	}
	reply(api, chatID, "Monitoring:\n"+strings.Join(accounts, "\n"))
}

func handleTrxsCommand(ctx context.Context, api *tgbotapi.BotAPI, client *near.Client, chatID int64, accountID string) {
	if accountID == "" {
		reply(api, chatID, "Please provide an account ID. Usage: /trxs <account_id>")
		return
	}

	txs, err := client.FetchTransactions(ctx, accountID)
	if err != nil {
		logging.LogError("Trxs command failed",
			zap.Int64("chat_id", chatID), zap.String("account", accountID), zap.Error(err))
		reply(api, chatID, fmt.Sprintf("Error fetching transactions: %v", err))
		return
	}

	if len(txs) == 0 {
		reply(api, chatID, fmt.Sprintf("No transactions found for %s.", accountID))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d transactions for %s:\n", len(txs), accountID)
	for _, tx := range txs {
		fmt.Fprintf(&b, "\nTime: %s\nHash: %s\nFrom: %s\nTo: %s\nAmount: %s\n",
			near.FormatBlockTimestamp(tx.BlockTimestamp),
			shortHash(tx.Hash),
			tx.SignerID,
			tx.ReceiverID,
			near.FormatNEAR(depositAmount(tx.ActionsAgg.Deposit)))
	}
	reply(api, chatID, b.String())
}

// shortHash abbreviates long transaction hashes for display.
func shortHash(hash string) string {
	if len(hash) > 10 {
		return hash[:10] + "..."
	}
	return hash
}

// depositAmount converts the NearBlocks float deposit into yoctoNEAR.
func depositAmount(deposit float64) *big.Int {
	v, _ := new(big.Float).SetFloat64(deposit).Int(nil)
	return v
}

func reply(api *tgbotapi.BotAPI, chatID int64, text string) {
	if _, err := api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logging.LogError("Failed to send reply",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
