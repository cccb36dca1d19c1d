// Package alert implements the periodic mood alert scan: a volume-adaptive
// negativity detector over a rolling window of recent messages per chat.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/moodmeter/moodmeter/internal/database"
	"github.com/moodmeter/moodmeter/internal/mood"
)

// Notifier delivers an alert text to a single user. Deliveries are best
// effort and independent per call.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// Threshold returns the alert threshold for a window's message count.
// The tiers are chosen so that a low-volume spike must be more extreme to
// trigger than heavy, persistently negative traffic. A count of zero means
// no alert regardless of score; the second return value is false then.
func Threshold(count int) (float64, bool) {
	switch {
	case count <= 0:
		return 0, false
	case count <= 10:
		return -0.7, true
	case count <= 50:
		return -0.5, true
	default:
		return -0.3, true
	}
}

// Engine scans every active chat's recent messages and notifies linked
// users when the chat's average mood falls at or below the volume-adaptive
// threshold. The engine is stateless across scans: alerting is
// level-triggered and re-fires on every scan while the condition holds.
type Engine struct {
	store    database.Store
	notifier Notifier
	log      *slog.Logger
	window   time.Duration
}

// NewEngine creates an alert engine over the given store and notifier.
// window is the rolling slice of messages evaluated per chat.
func NewEngine(store database.Store, notifier Notifier, log *slog.Logger, window time.Duration) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		log:      log.With("component", "alert_engine"),
		window:   window,
	}
}

// Scan evaluates all active chats as of now. A failure to list the chats
// aborts the whole scan; a failure on a single chat is logged and the scan
// moves on. Notification failures never stop delivery to other members.
func (e *Engine) Scan(ctx context.Context, now time.Time) error {
	chats, err := e.store.GetActiveChats(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active chats: %w", err)
	}

	since := now.Add(-e.window)
	alerted := 0

	for _, chat := range chats {
		messages, err := e.store.GetMessagesSince(ctx, chat.ChatID, since)
		if err != nil {
			e.log.ErrorContext(ctx, "Failed to load alert window, skipping chat",
				"chat_id", chat.ChatID, "error", err)
			continue
		}

		count := len(messages)
		threshold, ok := Threshold(count)
		if !ok {
			continue
		}

		var sum float64
		for i := range messages {
			sum += mood.LabelValue(messages[i].Label)
		}
		avgScore := sum / float64(count)

		if avgScore > threshold {
			continue
		}

		e.log.InfoContext(ctx, "Mood alert condition met",
			"chat_id", chat.ChatID, "avg_score", avgScore, "message_count", count, "threshold", threshold)

		if e.notifyMembers(ctx, chat, avgScore, count) {
			alerted++
		}
	}

	e.log.InfoContext(ctx, "Alert scan finished", "chats_scanned", len(chats), "chats_alerted", alerted)
	return nil
}

// notifyMembers fans an alert out to every user linked to the chat.
// Reports whether at least one delivery was attempted.
func (e *Engine) notifyMembers(ctx context.Context, chat database.Chat, avgScore float64, count int) bool {
	members, err := e.store.GetChatMembers(ctx, chat.ChatID)
	if err != nil {
		e.log.ErrorContext(ctx, "Failed to load chat members for alert", "chat_id", chat.ChatID, "error", err)
		return false
	}
	if len(members) == 0 {
		e.log.WarnContext(ctx, "Alert condition met but chat has no linked users", "chat_id", chat.ChatID)
		return false
	}

	name := chat.Name
	if name == "" {
		name = fmt.Sprintf("%d", chat.ChatID)
	}
	text := fmt.Sprintf(
		"Attention! Negative mood detected in chat %s:\n\nAverage mood score: %.2f\nMessages analyzed: %d",
		name, avgScore, count,
	)

	for _, userID := range members {
		if err := e.notifier.Notify(ctx, userID, text); err != nil {
			e.log.ErrorContext(ctx, "Failed to deliver mood alert",
				"chat_id", chat.ChatID, "user_id", userID, "error", err)
			continue
		}
		e.log.DebugContext(ctx, "Mood alert delivered", "chat_id", chat.ChatID, "user_id", userID)
	}
	return true
}
