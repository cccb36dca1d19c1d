package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/moodmeter/moodmeter/internal/database"
	"github.com/moodmeter/moodmeter/internal/mood"
)

// NewMessageHandler returns the default handler that classifies ordinary
// group messages and records their mood.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}
	// Unmatched commands fall through to the default handler; they carry no
	// conversational sentiment.
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}
	if update.Message.Chat.Type == models.ChatTypePrivate {
		log.DebugContext(ctx, "Ignoring private non-command message", "user_id", update.Message.From.ID)
		return
	}

	chatID := update.Message.Chat.ID
	h.process(ctx, chatID, update.Message.From.ID, update.Message.Text,
		time.Unix(int64(update.Message.Date), 0).UTC(),
		func(text string) { reply(ctx, b, log, chatID, text) })
}

// process runs the classify-and-record flow for one group message. The
// outcome reply (if any) is delivered through send, which keeps the flow
// testable without a live bot connection.
func (h messageHandler) process(ctx context.Context, chatID, userID int64, text string, ts time.Time, send func(string)) {
	log := h.deps.Logger.With("handler", "message")

	chat, err := h.deps.Store.GetChat(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up chat status", "chat_id", chatID, "error", err)
		send("Mood tracking is temporarily unavailable, please try again later.")
		return
	}
	if chat == nil {
		send("This chat is not set up for mood tracking. A member can register it with /add_chat in a private chat with me.")
		return
	}
	if chat.Status == database.ChatDeactivated {
		// Deactivated chats are dropped silently: no classification, no
		// persistence, no reply.
		log.DebugContext(ctx, "Dropping message for deactivated chat", "chat_id", chatID)
		return
	}

	result, err := h.deps.Classifier.Classify(ctx, text)
	if err != nil {
		log.ErrorContext(ctx, "Failed to classify message", "chat_id", chatID, "user_id", userID, "error", err)
		send("Could not analyze that message.")
		return
	}

	message := &database.Message{
		ChatID:     chatID,
		UserID:     userID,
		Content:    text,
		Timestamp:  ts,
		Label:      result.Label,
		Confidence: result.Confidence,
		MoodScore:  mood.WeightedChatMood(result.Label, result.Confidence),
	}
	if err := h.deps.Store.SaveMessage(ctx, message); err != nil {
		log.ErrorContext(ctx, "Failed to save classified message", "chat_id", chatID, "user_id", userID, "error", err)
		send("Something went wrong recording that message.")
		return
	}

	log.DebugContext(ctx, "Message classified and recorded",
		"chat_id", chatID, "user_id", userID, "label", result.Label.String(), "confidence", result.Confidence)
}
