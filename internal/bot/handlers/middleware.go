// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// PrivateOnly creates a middleware that restricts a command to private chats
// with the bot. Account and chat management must not leak passwords or chat
// IDs into group conversations.
func PrivateOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, bot, update)
				return
			}

			if update.Message.Chat.Type != models.ChatTypePrivate {
				log := deps.Logger.With("middleware", "PrivateOnly")
				log.DebugContext(ctx, "Command rejected outside private chat",
					"user_id", update.Message.From.ID, "chat_id", update.Message.Chat.ID)

				_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: update.Message.Chat.ID,
					Text:   "This command only works in a private chat with the bot.",
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send private-only notice", "error", err, "chat_id", update.Message.Chat.ID)
				}
				return
			}

			next(ctx, bot, update)
		}
	}
}

// reply sends a plain text response to the given chat, logging failures.
func reply(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
