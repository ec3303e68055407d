package commands

// Command to run the Telegram bot with the background watchlist monitor.
// Loads persisted state, broadcasts a restart notice to known users, starts
// the poller and the command handler, and shuts both down gracefully.

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"near-monitor/internal/bot"
	"near-monitor/internal/infra/config"
	"near-monitor/internal/infra/log"
	"near-monitor/internal/watchlist"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot with per-chat watchlists and alerts",
	Long: `Run the multi-user Telegram bot. Each chat manages its own watchlist of
NEAR accounts; a background task polls all watched accounts and sends an
alert whenever a balance changes.`,
	RunE: runBot,
}

func init() {
	withConfigFlags(botCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		log.LogError("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required (env: TELEGRAM_BOT_TOKEN)")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.LogError("Failed to initialize bot", zap.Error(err))
		return fmt.Errorf("failed to initialize bot: %w", err)
	}
	log.LogSuccess("Bot authorized", zap.String("username", api.Self.UserName))

	store := watchlist.Load(cfg.AccountsPath())
	registry := watchlist.LoadRegistry(cfg.UsersPath())

	client := newNearClient(cfg)
	notifier := bot.NewTelegramNotifier(api)

	// Notify known users about the new deployment/restart.
	users := registry.All()
	log.LogInfo("Broadcasting deployment notification", zap.Int("user_count", len(users)))
	sent, failed := bot.Broadcast(notifier, users, "🚀 New version deployed and bot restarted!")
	log.LogInfo("Deployment notifications sent",
		zap.Int("successful", sent), zap.Int("failed", failed))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		bot.RunBalanceMonitor(ctx, client, notifier, store,
			time.Duration(cfg.App.PollInterval)*time.Second)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		bot.RunCommandHandler(ctx, api, client, store, registry)
	}()

	log.LogSuccess("Bot is running", zap.String("status", "active"))

	<-ctx.Done()
	log.LogInfo("Shutdown signal received, gracefully stopping...")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.LogSuccess("Bot stopped gracefully")
	case <-time.After(10 * time.Second):
		log.LogWarn("Timeout waiting for tasks to stop, forcing shutdown")
	}

	return nil
}
