package store

import (
	"context"
	"errors"

	"github.com/mindhaven/backend/internal/model/chat"
	"github.com/mindhaven/backend/internal/model/wellness"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Store is the gateway to durable state. It is the sole writer of
// conversations, messages, mood entries and the point ledger; services keep
// only transient references for the duration of one request.
type Store interface {
	CreateConversation(ctx context.Context, userID, title string) (chat.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (chat.Conversation, error)
	// ListConversations returns the user's conversations ordered by
	// updated_at descending.
	ListConversations(ctx context.Context, userID string) ([]chat.Conversation, error)
	// UpdateConversationTitle renames a conversation and refreshes its
	// updated_at timestamp.
	UpdateConversationTitle(ctx context.Context, conversationID, title string) error

	// AppendMessage writes one turn and refreshes the owning conversation's
	// updated_at timestamp. Messages are never updated or deleted.
	AppendMessage(ctx context.Context, conversationID, role, content string) (chat.Message, error)
	// ListMessages returns a conversation's messages ordered by created_at
	// ascending.
	ListMessages(ctx context.Context, conversationID string) ([]chat.Message, error)

	// AppendPointAward writes one ledger entry. The ledger is append-only.
	AppendPointAward(ctx context.Context, userID string, points int, source, description string) (wellness.PointAward, error)
	// ListPointAwards returns a user's awards ordered by created_at descending.
	ListPointAwards(ctx context.Context, userID string) ([]wellness.PointAward, error)

	AppendMoodEntry(ctx context.Context, userID string, value int, label, emoji, note string) (wellness.MoodEntry, error)
	// ListMoodEntries returns a user's mood entries ordered by created_at
	// descending.
	ListMoodEntries(ctx context.Context, userID string) ([]wellness.MoodEntry, error)
}
