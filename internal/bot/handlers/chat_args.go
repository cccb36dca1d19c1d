package handlers

import (
	"fmt"
	"strconv"
	"strings"
)

// commandArgs splits a command message into its arguments, dropping the
// leading "/command" token itself.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// parseChatID parses the chat ID argument common to the chat management
// commands. Telegram group chat IDs are negative, so a plain signed parse.
func parseChatID(arg string) (int64, error) {
	chatID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat ID %q: %w", arg, err)
	}
	if chatID == 0 {
		return 0, fmt.Errorf("chat ID cannot be zero")
	}
	return chatID, nil
}
