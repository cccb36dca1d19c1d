package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/moodmeter/moodmeter/internal/database"
)

// NewRegisterHandler returns a handler for the /register command. It creates
// the caller's dashboard account with a generated password.
func NewRegisterHandler(deps HandlerDeps) bot.HandlerFunc {
	return registerHandler{deps}.Handle
}

type registerHandler struct {
	deps HandlerDeps
}

func (h registerHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "register")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Register handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /register command", "user_id", userID)

	existing, err := h.deps.Store.GetCredential(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up credential", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, "Something went wrong, please try again later.")
		return
	}
	if existing != nil {
		reply(ctx, b, log, chatID, "You are already registered. Use your existing password to log in to the dashboard.")
		return
	}

	// The password is only ever shown once, in this private chat.
	password := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.ErrorContext(ctx, "Failed to hash generated password", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, "Something went wrong, please try again later.")
		return
	}

	cred := &database.Credential{UserID: userID, PasswordHash: string(hash)}
	if err := h.deps.Store.SaveCredential(ctx, cred); err != nil {
		log.ErrorContext(ctx, "Failed to save credential", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, "Something went wrong, please try again later.")
		return
	}

	log.InfoContext(ctx, "User registered for dashboard access", "user_id", userID)
	reply(ctx, b, log, chatID, fmt.Sprintf(
		"Registered! Your dashboard credentials:\n\nUser ID: %d\nPassword: %s\n\nStore the password now, it will not be shown again.",
		userID, password,
	))
}
