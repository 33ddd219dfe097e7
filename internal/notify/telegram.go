package notify

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/sirupsen/logrus"
)

// Notifier delivers operational alerts, such as a failed run, to wherever
// the operator watches.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// TelegramNotifier sends alerts to an admin chat via the Telegram Bot API.
type TelegramNotifier struct {
	bot    *tgbot.Bot
	chatID int64
	log    logrus.FieldLogger
}

// NewTelegramNotifier creates a notifier for the given bot token and chat.
func NewTelegramNotifier(token string, chatID int64, logger logrus.FieldLogger) (*TelegramNotifier, error) {
	log := logger.WithField("component", "telegram_notifier")

	b, err := tgbot.New(token)
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info("Telegram notifier initialized")
	return &TelegramNotifier{
		bot:    b,
		chatID: chatID,
		log:    log,
	}, nil
}

// Notify sends the message to the configured admin chat.
func (n *TelegramNotifier) Notify(ctx context.Context, message string) error {
	_, err := n.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: n.chatID,
		Text:   message,
	})
	if err != nil {
		n.log.WithError(err).Error("Failed to send notification")
		return fmt.Errorf("failed to send notification: %w", err)
	}

	n.log.Info("Notification sent")
	return nil
}
