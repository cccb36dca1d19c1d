package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
)

// Notifier delivers alert texts to individual users through the bot's
// private chat with them. Satisfies the alert engine's notifier interface.
type Notifier struct {
	bot *bot.Bot
	log *slog.Logger
}

// NewNotifier creates a notifier that sends through the given bot instance.
func NewNotifier(b *bot.Bot, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		bot: b,
		log: logger.With("component", "telegram_notifier"),
	}
}

// Notify sends text to the user's private chat. For private chats the chat
// ID equals the user ID. Delivery fails for users who never started the bot;
// that error is returned for the caller to log.
func (n *Notifier) Notify(ctx context.Context, userID int64, text string) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to user %d: %w", userID, err)
	}

	n.log.DebugContext(ctx, "Notification sent", "user_id", userID)
	return nil
}
