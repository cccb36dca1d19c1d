package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/moodmeter/moodmeter/internal/database"
)

// NewAddChatHandler returns a handler for the /add_chat command. It registers
// a chat for monitoring (or reactivates it) and links the caller to it.
func NewAddChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return addChatHandler{deps}.Handle
}

type addChatHandler struct {
	deps HandlerDeps
}

func (h addChatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "add_chat")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Add chat handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	replyTo := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) < 1 {
		reply(ctx, b, log, replyTo, "Usage: /add_chat <chat_id> [name]")
		return
	}
	chatID, err := parseChatID(args[0])
	if err != nil {
		reply(ctx, b, log, replyTo, "That does not look like a chat ID. Usage: /add_chat <chat_id> [name]")
		return
	}
	name := strings.Join(args[1:], " ")

	log.InfoContext(ctx, "Handling /add_chat command", "user_id", userID, "chat_id", chatID)

	chat, err := h.deps.Store.GetChat(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up chat", "chat_id", chatID, "error", err)
		reply(ctx, b, log, replyTo, "Something went wrong, please try again later.")
		return
	}

	switch {
	case chat == nil:
		newChat := &database.Chat{ChatID: chatID, Name: name, Status: database.ChatActive}
		if err := h.deps.Store.CreateChat(ctx, newChat); err != nil {
			log.ErrorContext(ctx, "Failed to create chat", "chat_id", chatID, "error", err)
			reply(ctx, b, log, replyTo, "Something went wrong, please try again later.")
			return
		}
	case chat.Status == database.ChatDeactivated:
		if err := h.deps.Store.UpdateChatStatus(ctx, chatID, database.ChatActive); err != nil {
			log.ErrorContext(ctx, "Failed to reactivate chat", "chat_id", chatID, "error", err)
			reply(ctx, b, log, replyTo, "Something went wrong, please try again later.")
			return
		}
		log.InfoContext(ctx, "Chat reactivated", "chat_id", chatID, "user_id", userID)
	}

	linked, err := h.deps.Store.IsUserLinked(ctx, userID, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check chat membership", "user_id", userID, "chat_id", chatID, "error", err)
		reply(ctx, b, log, replyTo, "Something went wrong, please try again later.")
		return
	}
	if linked {
		reply(ctx, b, log, replyTo, "This chat is already set up and linked to your account.")
		return
	}

	if err := h.deps.Store.LinkUserChat(ctx, userID, chatID); err != nil {
		log.ErrorContext(ctx, "Failed to link user to chat", "user_id", userID, "chat_id", chatID, "error", err)
		reply(ctx, b, log, replyTo, "Something went wrong, please try again later.")
		return
	}

	log.InfoContext(ctx, "Chat registered and linked", "chat_id", chatID, "user_id", userID)
	reply(ctx, b, log, replyTo, fmt.Sprintf("Chat %d is now monitored and linked to your account.", chatID))
}
