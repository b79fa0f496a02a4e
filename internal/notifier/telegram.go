package notifier

import (
	"fmt"

	"crypto-trading-bot-go/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

// TelegramNotifier pushes messages to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.SugaredLogger
}

// NewTelegramNotifier authenticates against the Telegram bot API.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authentication failed: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger.S(),
	}, nil
}

// Notify sends the message to the configured chat. Failures are logged and
// swallowed.
func (n *TelegramNotifier) Notify(message string) {
	msg := tgbotapi.NewMessage(n.chatID, message)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warnf("telegram notification failed: %v", err)
	}
}
