package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	logging "near-monitor/internal/infra/log"
)

// Notifier delivers a text message to one subscriber. Delivery errors are
// never fatal to the caller.
type Notifier interface {
	Deliver(chatID int64, text string) error
}

// TelegramNotifier sends notifications through the Telegram Bot API.
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

func NewTelegramNotifier(api *tgbotapi.BotAPI) *TelegramNotifier {
	return &TelegramNotifier{api: api}
}

func (n *TelegramNotifier) Deliver(chatID int64, text string) error {
	_, err := n.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Broadcast delivers text to every chat in the list and reports how many
// deliveries succeeded and failed. Individual failures are logged and do
// not stop the broadcast.
func Broadcast(n Notifier, chatIDs []int64, text string) (sent, failed int) {
	for _, chatID := range chatIDs {
		if err := n.Deliver(chatID, text); err != nil {
			logging.LogWarn("Broadcast delivery failed",
				zap.Int64("chat_id", chatID), zap.Error(err))
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}
