package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations. Methods accept
// context.Context for cancellation and timeouts. Lookups of a single row
// return (nil, nil) when the row does not exist, so callers can distinguish
// "not configured" from a persistence failure.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage inserts a new classified message record.
	SaveMessage(ctx context.Context, message *Message) error

	// GetChat retrieves a chat by ID. Returns nil, nil if not found.
	GetChat(ctx context.Context, chatID int64) (*Chat, error)

	// CreateChat inserts a new chat record.
	CreateChat(ctx context.Context, chat *Chat) error

	// UpdateChatStatus sets the monitoring status of a chat.
	UpdateChatStatus(ctx context.Context, chatID int64, status ChatStatus) error

	// UpdateChatName sets the display name of a chat.
	UpdateChatName(ctx context.Context, chatID int64, name string) error

	// GetActiveChats retrieves all chats with status 'active'.
	GetActiveChats(ctx context.Context) ([]Chat, error)

	// SaveCredential stores a user's dashboard password hash.
	SaveCredential(ctx context.Context, cred *Credential) error

	// GetCredential retrieves a user's credential. Returns nil, nil if not found.
	GetCredential(ctx context.Context, userID int64) (*Credential, error)

	// LinkUserChat records membership of a user in a chat.
	LinkUserChat(ctx context.Context, userID, chatID int64) error

	// IsUserLinked reports whether a user is a member of a chat.
	IsUserLinked(ctx context.Context, userID, chatID int64) (bool, error)

	// GetChatMembers retrieves the user IDs linked to a chat.
	GetChatMembers(ctx context.Context, chatID int64) ([]int64, error)

	// GetUserChats retrieves the active chats a user is linked to.
	GetUserChats(ctx context.Context, userID int64) ([]Chat, error)

	// GetMessagesInRange retrieves a chat's messages with
	// start <= timestamp < end, ordered ascending by timestamp.
	GetMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]Message, error)

	// GetMessagesSince retrieves a chat's messages with timestamp >= since.
	GetMessagesSince(ctx context.Context, chatID int64, since time.Time) ([]Message, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
// Queries are written with ? placeholders and rebound per driver.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.ChatID == 0 {
		return fmt.Errorf("message must have a non-zero chat_id")
	}
	if message.UserID == 0 {
		return fmt.Errorf("message must have a non-zero user_id")
	}
	if message.Content == "" {
		return fmt.Errorf("message must have non-empty content")
	}
	if message.Timestamp.IsZero() {
		return fmt.Errorf("message must have a non-zero timestamp")
	}

	message.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO messages (chat_id, user_id, content, timestamp, label, confidence, mood_score, created_at)
        VALUES (:chat_id, :user_id, :content, :timestamp, :label, :confidence, :mood_score, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "chat_id", message.ChatID, "user_id", message.UserID, "error", err)
		return fmt.Errorf("failed to save message (chat %d, user %d): %w", message.ChatID, message.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		message.ID = uint(id)
	}

	s.logger.DebugContext(ctx, "Message saved successfully",
		"chat_id", message.ChatID, "user_id", message.UserID, "label", message.Label.String())
	return nil
}

func (s *sqlxStore) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}

	var chat Chat
	query := s.db.Rebind(`SELECT chat_id, name, status, created_at, updated_at FROM chats WHERE chat_id = ?`)

	err := s.db.GetContext(ctx, &chat, query, chatID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No chat found", "chat_id", chatID)
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting chat", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get chat %d: %w", chatID, err)
	}

	return &chat, nil
}

func (s *sqlxStore) CreateChat(ctx context.Context, chat *Chat) error {
	if chat == nil {
		return fmt.Errorf("cannot create nil chat")
	}
	if chat.ChatID == 0 {
		return fmt.Errorf("chat must have a non-zero chat_id")
	}
	if chat.Status == "" {
		chat.Status = ChatActive
	}

	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	query := `
        INSERT INTO chats (chat_id, name, status, created_at, updated_at)
        VALUES (:chat_id, :name, :status, :created_at, :updated_at);
    `

	if _, err := s.db.NamedExecContext(ctx, query, chat); err != nil {
		s.logger.ErrorContext(ctx, "Error creating chat", "chat_id", chat.ChatID, "error", err)
		return fmt.Errorf("failed to create chat %d: %w", chat.ChatID, err)
	}

	s.logger.DebugContext(ctx, "Chat created successfully", "chat_id", chat.ChatID, "name", chat.Name)
	return nil
}

func (s *sqlxStore) UpdateChatStatus(ctx context.Context, chatID int64, status ChatStatus) error {
	return s.updateChatField(ctx, chatID, "status", string(status))
}

func (s *sqlxStore) UpdateChatName(ctx context.Context, chatID int64, name string) error {
	return s.updateChatField(ctx, chatID, "name", name)
}

// updateChatField performs a single-field update on a chat row. The column
// name is fixed by the callers, never caller-supplied input.
func (s *sqlxStore) updateChatField(ctx context.Context, chatID int64, column, value string) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}

	query := s.db.Rebind(fmt.Sprintf(`UPDATE chats SET %s = ?, updated_at = ? WHERE chat_id = ?`, column))

	result, err := s.db.ExecContext(ctx, query, value, time.Now().UTC(), chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating chat", "chat_id", chatID, "column", column, "error", err)
		return fmt.Errorf("failed to update chat %d %s: %w", chatID, column, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected when updating chat",
			"chat_id", chatID, "column", column, "affected", affected)
	}

	s.logger.DebugContext(ctx, "Chat updated successfully", "chat_id", chatID, "column", column)
	return nil
}

func (s *sqlxStore) GetActiveChats(ctx context.Context) ([]Chat, error) {
	var chats []Chat
	query := s.db.Rebind(`SELECT chat_id, name, status, created_at, updated_at FROM chats WHERE status = ? ORDER BY chat_id`)

	if err := s.db.SelectContext(ctx, &chats, query, ChatActive); err != nil {
		s.logger.ErrorContext(ctx, "Error getting active chats", "error", err)
		return nil, fmt.Errorf("failed to get active chats: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched active chats", "count", len(chats))
	return chats, nil
}

func (s *sqlxStore) SaveCredential(ctx context.Context, cred *Credential) error {
	if cred == nil {
		return fmt.Errorf("cannot save nil credential")
	}
	if cred.UserID == 0 {
		return fmt.Errorf("credential must have a non-zero user_id")
	}
	if cred.PasswordHash == "" {
		return fmt.Errorf("credential must have a non-empty password hash")
	}

	cred.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO user_credentials (user_id, password_hash, created_at)
        VALUES (:user_id, :password_hash, :created_at);
    `

	if _, err := s.db.NamedExecContext(ctx, query, cred); err != nil {
		s.logger.ErrorContext(ctx, "Error saving credential", "user_id", cred.UserID, "error", err)
		return fmt.Errorf("failed to save credential for user %d: %w", cred.UserID, err)
	}

	s.logger.DebugContext(ctx, "Credential saved successfully", "user_id", cred.UserID)
	return nil
}

func (s *sqlxStore) GetCredential(ctx context.Context, userID int64) (*Credential, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var cred Credential
	query := s.db.Rebind(`SELECT user_id, password_hash, created_at FROM user_credentials WHERE user_id = ?`)

	err := s.db.GetContext(ctx, &cred, query, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No credential found", "user_id", userID)
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting credential", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get credential for user %d: %w", userID, err)
	}

	return &cred, nil
}

func (s *sqlxStore) LinkUserChat(ctx context.Context, userID, chatID int64) error {
	if userID == 0 || chatID == 0 {
		return fmt.Errorf("user_id and chat_id must be non-zero")
	}

	query := s.db.Rebind(`INSERT INTO user_chats (user_id, chat_id) VALUES (?, ?)`)

	if _, err := s.db.ExecContext(ctx, query, userID, chatID); err != nil {
		s.logger.ErrorContext(ctx, "Error linking user to chat", "user_id", userID, "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to link user %d to chat %d: %w", userID, chatID, err)
	}

	s.logger.DebugContext(ctx, "User linked to chat", "user_id", userID, "chat_id", chatID)
	return nil
}

func (s *sqlxStore) IsUserLinked(ctx context.Context, userID, chatID int64) (bool, error) {
	if userID == 0 || chatID == 0 {
		return false, fmt.Errorf("user_id and chat_id must be non-zero")
	}

	var one int
	query := s.db.Rebind(`SELECT 1 FROM user_chats WHERE user_id = ? AND chat_id = ? LIMIT 1`)

	err := s.db.GetContext(ctx, &one, query, userID, chatID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error checking chat membership", "user_id", userID, "chat_id", chatID, "error", err)
		return false, fmt.Errorf("failed to check membership of user %d in chat %d: %w", userID, chatID, err)
	}

	return true, nil
}

func (s *sqlxStore) GetChatMembers(ctx context.Context, chatID int64) ([]int64, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}

	var members []int64
	query := s.db.Rebind(`SELECT user_id FROM user_chats WHERE chat_id = ? ORDER BY user_id`)

	if err := s.db.SelectContext(ctx, &members, query, chatID); err != nil {
		s.logger.ErrorContext(ctx, "Error getting chat members", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get members of chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched chat members", "chat_id", chatID, "count", len(members))
	return members, nil
}

func (s *sqlxStore) GetUserChats(ctx context.Context, userID int64) ([]Chat, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var chats []Chat
	query := s.db.Rebind(`
        SELECT c.chat_id, c.name, c.status, c.created_at, c.updated_at
        FROM user_chats uc
        JOIN chats c ON uc.chat_id = c.chat_id
        WHERE uc.user_id = ? AND c.status = ?
        ORDER BY c.chat_id;
    `)

	if err := s.db.SelectContext(ctx, &chats, query, userID, ChatActive); err != nil {
		s.logger.ErrorContext(ctx, "Error getting user chats", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get chats for user %d: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "Fetched user chats", "user_id", userID, "count", len(chats))
	return chats, nil
}

func (s *sqlxStore) GetMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}

	var messages []Message
	query := s.db.Rebind(`
        SELECT id, chat_id, user_id, content, timestamp, label, confidence, mood_score, created_at
        FROM messages
        WHERE chat_id = ? AND timestamp >= ? AND timestamp < ?
        ORDER BY timestamp ASC;
    `)

	if err := s.db.SelectContext(ctx, &messages, query, chatID, start.UTC(), end.UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Error getting messages in range",
			"chat_id", chatID, "start", start, "end", end, "error", err)
		return nil, fmt.Errorf("failed to get messages for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched messages in range", "chat_id", chatID, "count", len(messages))
	return messages, nil
}

func (s *sqlxStore) GetMessagesSince(ctx context.Context, chatID int64, since time.Time) ([]Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}

	var messages []Message
	query := s.db.Rebind(`
        SELECT id, chat_id, user_id, content, timestamp, label, confidence, mood_score, created_at
        FROM messages
        WHERE chat_id = ? AND timestamp >= ?
        ORDER BY timestamp ASC;
    `)

	if err := s.db.SelectContext(ctx, &messages, query, chatID, since.UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent messages", "chat_id", chatID, "since", since, "error", err)
		return nil, fmt.Errorf("failed to get recent messages for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched recent messages", "chat_id", chatID, "count", len(messages))
	return messages, nil
}

// RunSQLMaintenance executes a VACUUM on the database. Valid for both
// supported drivers; SQLite requires it to run outside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
