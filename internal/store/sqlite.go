package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mindhaven/backend/internal/model/chat"
	"github.com/mindhaven/backend/internal/model/wellness"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_conversations (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_user ON chat_conversations (user_id, updated_at);

CREATE TABLE IF NOT EXISTS chat_messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES chat_conversations (id),
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON chat_messages (conversation_id, created_at);

CREATE TABLE IF NOT EXISTS wellness_points (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	points      INTEGER NOT NULL,
	source      TEXT NOT NULL,
	description TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_points_user ON wellness_points (user_id, created_at);

CREATE TABLE IF NOT EXISTS mood_entries (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	mood_value INTEGER NOT NULL,
	mood_label TEXT NOT NULL,
	mood_emoji TEXT NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_moods_user ON mood_entries (user_id, created_at);
`

// SQLite implements Store on a local SQLite file via the pure-Go driver.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	// Single writer at a time keeps SQLITE_BUSY out of the picture.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) CreateConversation(ctx context.Context, userID, title string) (chat.Conversation, error) {
	conversation := chat.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	conversation.UpdatedAt = conversation.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_conversations (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		conversation.ID, conversation.UserID, conversation.Title,
		formatTime(conversation.CreatedAt), formatTime(conversation.UpdatedAt))
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("failed to insert conversation: %w", err)
	}

	return conversation, nil
}

func (s *SQLite) GetConversation(ctx context.Context, conversationID string) (chat.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM chat_conversations WHERE id = ?`,
		conversationID)

	conversation, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Conversation{}, ErrConversationNotFound
	}
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("failed to load conversation: %w", err)
	}
	return conversation, nil
}

func (s *SQLite) ListConversations(ctx context.Context, userID string) ([]chat.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM chat_conversations
		 WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]chat.Conversation, 0)
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, conversation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return conversations, nil
}

func (s *SQLite) UpdateConversationTitle(ctx context.Context, conversationID, title string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE chat_conversations SET title = ?, updated_at = ? WHERE id = ?`,
		title, formatTime(time.Now().UTC()), conversationID)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *SQLite) AppendMessage(ctx context.Context, conversationID, role, content string) (chat.Message, error) {
	message := chat.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE chat_conversations SET updated_at = ? WHERE id = ?`,
		formatTime(message.CreatedAt), conversationID)
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to touch conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to read touch result: %w", err)
	}
	if affected == 0 {
		return chat.Message{}, ErrConversationNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		message.ID, message.ConversationID, message.Role, message.Content,
		formatTime(message.CreatedAt)); err != nil {
		return chat.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return chat.Message{}, fmt.Errorf("failed to commit message: %w", err)
	}

	return message, nil
}

func (s *SQLite) ListMessages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at FROM chat_messages
		 WHERE conversation_id = ? ORDER BY created_at ASC, rowid ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]chat.Message, 0)
	for rows.Next() {
		var message chat.Message
		var createdAt string
		if err := rows.Scan(&message.ID, &message.ConversationID, &message.Role, &message.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if message.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return messages, nil
}

func (s *SQLite) AppendPointAward(ctx context.Context, userID string, points int, source, description string) (wellness.PointAward, error) {
	award := wellness.PointAward{
		ID:          uuid.NewString(),
		UserID:      userID,
		Points:      points,
		Source:      source,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wellness_points (id, user_id, points, source, description, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		award.ID, award.UserID, award.Points, award.Source, award.Description,
		formatTime(award.CreatedAt))
	if err != nil {
		return wellness.PointAward{}, fmt.Errorf("failed to insert point award: %w", err)
	}

	return award, nil
}

func (s *SQLite) ListPointAwards(ctx context.Context, userID string) ([]wellness.PointAward, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, points, source, description, created_at FROM wellness_points
		 WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query point awards: %w", err)
	}
	defer rows.Close()

	awards := make([]wellness.PointAward, 0)
	for rows.Next() {
		var award wellness.PointAward
		var createdAt string
		if err := rows.Scan(&award.ID, &award.UserID, &award.Points, &award.Source, &award.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan point award: %w", err)
		}
		if award.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		awards = append(awards, award)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return awards, nil
}

func (s *SQLite) AppendMoodEntry(ctx context.Context, userID string, value int, label, emoji, note string) (wellness.MoodEntry, error) {
	entry := wellness.MoodEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		MoodValue: value,
		MoodLabel: label,
		MoodEmoji: emoji,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mood_entries (id, user_id, mood_value, mood_label, mood_emoji, note, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.MoodValue, entry.MoodLabel, entry.MoodEmoji, entry.Note,
		formatTime(entry.CreatedAt))
	if err != nil {
		return wellness.MoodEntry{}, fmt.Errorf("failed to insert mood entry: %w", err)
	}

	return entry, nil
}

func (s *SQLite) ListMoodEntries(ctx context.Context, userID string) ([]wellness.MoodEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, mood_value, mood_label, mood_emoji, note, created_at FROM mood_entries
		 WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood entries: %w", err)
	}
	defer rows.Close()

	entries := make([]wellness.MoodEntry, 0)
	for rows.Next() {
		var entry wellness.MoodEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.MoodValue, &entry.MoodLabel, &entry.MoodEmoji, &entry.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (chat.Conversation, error) {
	var conversation chat.Conversation
	var createdAt, updatedAt string
	if err := row.Scan(&conversation.ID, &conversation.UserID, &conversation.Title, &createdAt, &updatedAt); err != nil {
		return chat.Conversation{}, err
	}

	var err error
	if conversation.CreatedAt, err = parseTime(createdAt); err != nil {
		return chat.Conversation{}, err
	}
	if conversation.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return chat.Conversation{}, err
	}
	return conversation, nil
}

// Timestamps are stored as fixed-width UTC text so lexical and chronological
// order agree.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", raw, err)
	}
	return t, nil
}
