package coach

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mindhaven/backend/internal/model/chat"
	"github.com/mindhaven/backend/internal/model/wellness"
	"github.com/mindhaven/backend/internal/service/ai"
	"github.com/mindhaven/backend/internal/store"
)

// Policy constants. Fixed by product decision, not configuration.
const (
	// historyWindow bounds how many persisted turns feed the generator,
	// counting the just-written user turn.
	historyWindow = 10
	// chatSessionPoints is awarded once per completed exchange.
	chatSessionPoints = 5
	// titleLimit caps generated conversation titles.
	titleLimit = 50
)

var ErrEmptyMessage = errors.New("message is empty")

// Service orchestrates one coaching exchange: persist the user turn, generate
// a reply with short-term context, persist it, and apply the follow-up side
// effects (first-exchange titling, point award).
type Service struct {
	store     store.Store
	generator ai.TextGenerator
}

// NewService wires the orchestrator to its collaborators.
func NewService(st store.Store, generator ai.TextGenerator) *Service {
	return &Service{store: st, generator: generator}
}

// Result is the refreshed view state handed back to the UI layer after an
// operation.
type Result struct {
	Conversation chat.Conversation `json:"conversation"`
	Messages     []chat.Message    `json:"messages"`
}

// SendMessage runs the full exchange pipeline. conversationID may be empty,
// in which case a conversation is created first. Failures before the user
// turn is committed abort the call; everything after it is best-effort.
func (s *Service) SendMessage(ctx context.Context, userID, conversationID, text string) (Result, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return Result{}, ErrEmptyMessage
	}

	conversation, err := s.ensureConversation(ctx, userID, conversationID)
	if err != nil {
		return Result{}, err
	}

	prior, err := s.store.ListMessages(ctx, conversation.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load conversation history: %w", err)
	}

	// Durability precedes inference: the user's words are committed before
	// any generation attempt.
	userMessage, err := s.store.AppendMessage(ctx, conversation.ID, chat.RoleUser, content)
	if err != nil {
		return Result{}, fmt.Errorf("failed to persist user message: %w", err)
	}

	reply := s.generator.GenerateResponse(ctx, content, promptHistory(prior, userMessage))

	var assistantMessage chat.Message
	assistantPersisted := false
	s.bestEffort("persist assistant message", func() error {
		var err error
		assistantMessage, err = s.store.AppendMessage(ctx, conversation.ID, chat.RoleAssistant, reply)
		assistantPersisted = err == nil
		return err
	})

	// First exchange names the thread.
	if len(prior) == 0 {
		s.bestEffort("set conversation title", func() error {
			title := truncateTitle(s.generator.GenerateTitle(ctx, content, reply))
			return s.store.UpdateConversationTitle(ctx, conversation.ID, title)
		})
	}

	// Points reward a completed round-trip; a lost assistant turn earns none.
	if assistantPersisted {
		s.bestEffort("award chat points", func() error {
			_, err := s.store.AppendPointAward(ctx, userID, chatSessionPoints,
				wellness.SourceChatSession, "Wellness chat session")
			return err
		})
	}

	return s.refresh(ctx, conversation, append(append(prior, userMessage), assistantMessage)), nil
}

// StartConversation provisions an empty conversation with the placeholder
// title, for the explicit "new conversation" action.
func (s *Service) StartConversation(ctx context.Context, userID string) (chat.Conversation, error) {
	conversation, err := s.store.CreateConversation(ctx, userID, chat.DefaultTitle)
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conversation, nil
}

// Conversations lists the user's threads, most recently active first.
func (s *Service) Conversations(ctx context.Context, userID string) ([]chat.Conversation, error) {
	return s.store.ListConversations(ctx, userID)
}

// Transcript loads one conversation with its full message log.
func (s *Service) Transcript(ctx context.Context, userID, conversationID string) (Result, error) {
	conversation, err := s.ownedConversation(ctx, userID, conversationID)
	if err != nil {
		return Result{}, err
	}

	messages, err := s.store.ListMessages(ctx, conversation.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load messages: %w", err)
	}

	return Result{Conversation: conversation, Messages: messages}, nil
}

func (s *Service) ensureConversation(ctx context.Context, userID, conversationID string) (chat.Conversation, error) {
	if conversationID == "" {
		return s.StartConversation(ctx, userID)
	}
	return s.ownedConversation(ctx, userID, conversationID)
}

func (s *Service) ownedConversation(ctx context.Context, userID, conversationID string) (chat.Conversation, error) {
	conversation, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return chat.Conversation{}, err
	}
	// Conversations of other users are indistinguishable from missing ones.
	if conversation.UserID != userID {
		return chat.Conversation{}, store.ErrConversationNotFound
	}
	return conversation, nil
}

// bestEffort runs a non-critical pipeline step. A failure is logged and
// swallowed; the already-committed turns stay valid.
func (s *Service) bestEffort(step string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("[coach] %s failed: %v", step, err)
	}
}

// refresh re-reads the conversation and message log for display. The exchange
// is already committed at this point, so a failed re-read falls back to the
// state assembled during the call rather than surfacing an error.
func (s *Service) refresh(ctx context.Context, conversation chat.Conversation, local []chat.Message) Result {
	result := Result{Conversation: conversation, Messages: compactMessages(local)}

	if refreshed, err := s.store.GetConversation(ctx, conversation.ID); err == nil {
		result.Conversation = refreshed
	} else {
		log.Printf("[coach] failed to refresh conversation: %v", err)
	}

	if messages, err := s.store.ListMessages(ctx, conversation.ID); err == nil {
		result.Messages = messages
	} else {
		log.Printf("[coach] failed to refresh messages: %v", err)
	}

	return result
}

// promptHistory derives the bounded context window: the last historyWindow
// messages including the just-written user turn, with that newest turn then
// dropped because the generator receives it separately as the current query.
func promptHistory(prior []chat.Message, current chat.Message) []chat.Message {
	window := make([]chat.Message, 0, len(prior)+1)
	window = append(window, prior...)
	window = append(window, current)

	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}
	return window[:len(window)-1]
}

// truncateTitle enforces the title length cap; an empty generated title keeps
// the placeholder instead.
func truncateTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return chat.DefaultTitle
	}

	runes := []rune(title)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit])
	}
	return title
}

func compactMessages(messages []chat.Message) []chat.Message {
	compact := make([]chat.Message, 0, len(messages))
	for _, message := range messages {
		if message.ID != "" {
			compact = append(compact, message)
		}
	}
	return compact
}
