package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/moodmeter/moodmeter/internal/database"
)

// NewDeactivateChatHandler returns a handler for the /deactivate_chat
// command. Only users linked to the chat may deactivate it.
func NewDeactivateChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return deactivateChatHandler{deps}.Handle
}

type deactivateChatHandler struct {
	deps HandlerDeps
}

func (h deactivateChatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "deactivate_chat")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Deactivate chat handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	replyTo := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		reply(ctx, b, log, replyTo, "Usage: /deactivate_chat <chat_id>")
		return
	}
	chatID, err := parseChatID(args[0])
	if err != nil {
		reply(ctx, b, log, replyTo, "That does not look like a chat ID. Usage: /deactivate_chat <chat_id>")
		return
	}

	log.InfoContext(ctx, "Handling /deactivate_chat command", "user_id", userID, "chat_id", chatID)

	linked, err := h.deps.Store.IsUserLinked(ctx, userID, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check chat membership", "user_id", userID, "chat_id", chatID, "error", err)
		reply(ctx, b, log, replyTo, "Something went wrong, please try again later.")
		return
	}
	if !linked {
		log.WarnContext(ctx, "Unauthorized deactivation attempt", "user_id", userID, "chat_id", chatID)
		reply(ctx, b, log, replyTo, "You are not linked to that chat.")
		return
	}

	if err := h.deps.Store.UpdateChatStatus(ctx, chatID, database.ChatDeactivated); err != nil {
		log.ErrorContext(ctx, "Failed to deactivate chat", "chat_id", chatID, "error", err)
		reply(ctx, b, log, replyTo, "Something went wrong, please try again later.")
		return
	}

	log.InfoContext(ctx, "Chat deactivated", "chat_id", chatID, "user_id", userID)
	reply(ctx, b, log, replyTo, fmt.Sprintf("Chat %d is no longer monitored. Its history is kept; /add_chat reactivates it.", chatID))
}
