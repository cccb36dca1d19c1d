package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const usageText = `MoodMeter tracks the mood of your group chats.

Commands (private chat only, except /start):
/register - create your dashboard account
/add_chat <chat_id> [name] - register a chat for monitoring
/deactivate_chat <chat_id> - stop monitoring a chat
/rename_chat <chat_id> <name> - rename a monitored chat

Add the bot to a group and register the group's chat ID to start collecting mood data.`

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)
	reply(ctx, b, log, update.Message.Chat.ID, usageText)
}
