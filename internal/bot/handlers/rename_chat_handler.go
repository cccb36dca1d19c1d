package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewRenameChatHandler returns a handler for the /rename_chat command.
// Only users linked to the chat may rename it.
func NewRenameChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return renameChatHandler{deps}.Handle
}

type renameChatHandler struct {
	deps HandlerDeps
}

func (h renameChatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "rename_chat")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Rename chat handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	replyTo := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) < 2 {
		reply(ctx, b, log, replyTo, "Usage: /rename_chat <chat_id> <name>")
		return
	}
	chatID, err := parseChatID(args[0])
	if err != nil {
		reply(ctx, b, log, replyTo, "That does not look like a chat ID. Usage: /rename_chat <chat_id> <name>")
		return
	}
	name := strings.Join(args[1:], " ")

	log.InfoContext(ctx, "Handling /rename_chat command", "user_id", userID, "chat_id", chatID)

	linked, err := h.deps.Store.IsUserLinked(ctx, userID, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check chat membership", "user_id", userID, "chat_id", chatID, "error", err)
		reply(ctx, b, log, replyTo, "Something went wrong, please try again later.")
		return
	}
	if !linked {
		log.WarnContext(ctx, "Unauthorized rename attempt", "user_id", userID, "chat_id", chatID)
		reply(ctx, b, log, replyTo, "You are not linked to that chat.")
		return
	}

	if err := h.deps.Store.UpdateChatName(ctx, chatID, name); err != nil {
		log.ErrorContext(ctx, "Failed to rename chat", "chat_id", chatID, "error", err)
		reply(ctx, b, log, replyTo, "Something went wrong, please try again later.")
		return
	}

	log.InfoContext(ctx, "Chat renamed", "chat_id", chatID, "user_id", userID, "name", name)
	reply(ctx, b, log, replyTo, fmt.Sprintf("Chat %d is now named %q.", chatID, name))
}
