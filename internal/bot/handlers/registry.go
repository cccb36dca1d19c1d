package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its middleware.
// It encapsulates all information needed to register a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
// Account management commands only work in a private chat with the bot.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	privateMiddleware := []tgbot.Middleware{PrivateOnly(deps)}

	handlers["/register"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "register",
		Handler:     NewRegisterHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  privateMiddleware,
	}
	handlers["/add_chat"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "add_chat",
		Handler:     NewAddChatHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  privateMiddleware,
	}
	handlers["/deactivate_chat"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "deactivate_chat",
		Handler:     NewDeactivateChatHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  privateMiddleware,
	}
	handlers["/rename_chat"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "rename_chat",
		Handler:     NewRenameChatHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  privateMiddleware,
	}

	return handlers
}
