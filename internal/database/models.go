package database

import (
	"time"

	"github.com/moodmeter/moodmeter/internal/mood"
)

// ChatStatus is the monitoring state of a chat. Deactivated chats accept no
// new messages for analysis but keep their history.
type ChatStatus string

const (
	ChatActive      ChatStatus = "active"
	ChatDeactivated ChatStatus = "deactivated"
)

// Message is one classified chat message. Rows are created once on
// classification and never mutated; the table is an append-only log.
type Message struct {
	ID        uint      `db:"id"`
	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`

	Label      mood.Label `db:"label"`
	Confidence float64    `db:"confidence"` // classifier confidence, [0,1]
	MoodScore  float64    `db:"mood_score"` // confidence-weighted 0-5 health score

	CreatedAt time.Time `db:"created_at"`
}

// Chat is a group chat registered for mood monitoring.
type Chat struct {
	ChatID    int64      `db:"chat_id"`
	Name      string     `db:"name"`
	Status    ChatStatus `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Credential holds a user's bcrypt-hashed dashboard password.
type Credential struct {
	UserID       int64     `db:"user_id"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
