package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindhaven/backend/internal/model/chat"
	"github.com/mindhaven/backend/internal/model/wellness"
)

// Memory implements Store with mutex-guarded maps. It backs tests and
// credential-less development runs; nothing survives a restart.
type Memory struct {
	mu            sync.RWMutex
	conversations map[string]chat.Conversation
	messages      map[string][]chat.Message
	awards        map[string][]wellness.PointAward
	moods         map[string][]wellness.MoodEntry
}

// NewMemory bootstraps an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[string]chat.Conversation),
		messages:      make(map[string][]chat.Message),
		awards:        make(map[string][]wellness.PointAward),
		moods:         make(map[string][]wellness.MoodEntry),
	}
}

func (m *Memory) CreateConversation(_ context.Context, userID, title string) (chat.Conversation, error) {
	now := time.Now().UTC()
	conversation := chat.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.conversations[conversation.ID] = conversation
	m.messages[conversation.ID] = make([]chat.Message, 0, 16)
	m.mu.Unlock()

	return conversation, nil
}

func (m *Memory) GetConversation(_ context.Context, conversationID string) (chat.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conversation, ok := m.conversations[conversationID]
	if !ok {
		return chat.Conversation{}, ErrConversationNotFound
	}
	return conversation, nil
}

func (m *Memory) ListConversations(_ context.Context, userID string) ([]chat.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conversations := make([]chat.Conversation, 0)
	for _, conversation := range m.conversations {
		if conversation.UserID == userID {
			conversations = append(conversations, conversation)
		}
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

func (m *Memory) UpdateConversationTitle(_ context.Context, conversationID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conversation, ok := m.conversations[conversationID]
	if !ok {
		return ErrConversationNotFound
	}

	conversation.Title = title
	conversation.UpdatedAt = time.Now().UTC()
	m.conversations[conversationID] = conversation
	return nil
}

func (m *Memory) AppendMessage(_ context.Context, conversationID, role, content string) (chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conversation, ok := m.conversations[conversationID]
	if !ok {
		return chat.Message{}, ErrConversationNotFound
	}

	message := chat.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	m.messages[conversationID] = append(m.messages[conversationID], message)

	conversation.UpdatedAt = message.CreatedAt
	m.conversations[conversationID] = conversation

	return message, nil
}

func (m *Memory) ListMessages(_ context.Context, conversationID string) ([]chat.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages, ok := m.messages[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

func (m *Memory) AppendPointAward(_ context.Context, userID string, points int, source, description string) (wellness.PointAward, error) {
	award := wellness.PointAward{
		ID:          uuid.NewString(),
		UserID:      userID,
		Points:      points,
		Source:      source,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	m.mu.Lock()
	m.awards[userID] = append(m.awards[userID], award)
	m.mu.Unlock()

	return award, nil
}

func (m *Memory) ListPointAwards(_ context.Context, userID string) ([]wellness.PointAward, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	awards := make([]wellness.PointAward, len(m.awards[userID]))
	copy(awards, m.awards[userID])

	sort.Slice(awards, func(i, j int) bool {
		return awards[i].CreatedAt.After(awards[j].CreatedAt)
	})
	return awards, nil
}

func (m *Memory) AppendMoodEntry(_ context.Context, userID string, value int, label, emoji, note string) (wellness.MoodEntry, error) {
	entry := wellness.MoodEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		MoodValue: value,
		MoodLabel: label,
		MoodEmoji: emoji,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.moods[userID] = append(m.moods[userID], entry)
	m.mu.Unlock()

	return entry, nil
}

func (m *Memory) ListMoodEntries(_ context.Context, userID string) ([]wellness.MoodEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]wellness.MoodEntry, len(m.moods[userID]))
	copy(entries, m.moods[userID])

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}
