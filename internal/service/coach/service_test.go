package coach_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mindhaven/backend/internal/model/chat"
	"github.com/mindhaven/backend/internal/model/wellness"
	"github.com/mindhaven/backend/internal/service/coach"
	"github.com/mindhaven/backend/internal/store"
)

type stubGenerator struct {
	reply string
	title string

	responseCalls int
	lastMessage   string
	lastHistory   []chat.Message
}

func (g *stubGenerator) GenerateResponse(_ context.Context, message string, history []chat.Message) string {
	g.responseCalls++
	g.lastMessage = message
	g.lastHistory = history
	return g.reply
}

func (g *stubGenerator) GenerateTitle(_ context.Context, _, _ string) string {
	return g.title
}

func newService() (*coach.Service, *store.Memory, *stubGenerator) {
	st := store.NewMemory()
	generator := &stubGenerator{reply: "take a slow breath", title: "Managing Stress"}
	return coach.NewService(st, generator), st, generator
}

func TestSendMessagePersistsExchange(t *testing.T) {
	svc, st, _ := newService()
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, "user-1", "", "I'm feeling stressed about my exams")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	if len(result.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(result.Messages))
	}
	if result.Messages[0].Role != chat.RoleUser || result.Messages[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected roles: %s, %s", result.Messages[0].Role, result.Messages[1].Role)
	}
	if result.Messages[1].CreatedAt.Before(result.Messages[0].CreatedAt) {
		t.Fatal("assistant message predates user message")
	}
	if result.Messages[1].Content != "take a slow breath" {
		t.Fatalf("unexpected assistant content: %q", result.Messages[1].Content)
	}

	awards, err := st.ListPointAwards(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListPointAwards err: %v", err)
	}
	if len(awards) != 1 {
		t.Fatalf("expected 1 award, got %d", len(awards))
	}
	if awards[0].Points != 5 || awards[0].Source != wellness.SourceChatSession {
		t.Fatalf("unexpected award: %+v", awards[0])
	}
	if awards[0].Description != "Wellness chat session" {
		t.Fatalf("unexpected award description: %q", awards[0].Description)
	}
}

func TestSendMessageEmptyInputIsNoOp(t *testing.T) {
	svc, _, generator := newService()
	ctx := context.Background()

	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := svc.SendMessage(ctx, "user-1", "", input); !errors.Is(err, coach.ErrEmptyMessage) {
			t.Fatalf("input %q: expected ErrEmptyMessage, got %v", input, err)
		}
	}

	if generator.responseCalls != 0 {
		t.Fatalf("generator invoked %d times for empty input", generator.responseCalls)
	}

	conversations, err := svc.Conversations(ctx, "user-1")
	if err != nil {
		t.Fatalf("Conversations err: %v", err)
	}
	if len(conversations) != 0 {
		t.Fatalf("expected no conversations, got %d", len(conversations))
	}
}

func TestSendMessageCreatesConversationWhenNoneActive(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, "user-1", "", "hello")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if result.Conversation.ID == "" {
		t.Fatal("expected a conversation to be created")
	}

	// Second send against the same conversation must not create another one.
	if _, err := svc.SendMessage(ctx, "user-1", result.Conversation.ID, "thanks, that's helpful"); err != nil {
		t.Fatalf("second SendMessage err: %v", err)
	}

	conversations, err := svc.Conversations(ctx, "user-1")
	if err != nil {
		t.Fatalf("Conversations err: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
}

func TestSendMessageHistoryWindow(t *testing.T) {
	svc, st, generator := newService()
	ctx := context.Background()

	conversation, err := svc.StartConversation(ctx, "user-1")
	if err != nil {
		t.Fatalf("StartConversation err: %v", err)
	}

	prior := make([]chat.Message, 0, 15)
	for i := 0; i < 15; i++ {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		message, err := st.AppendMessage(ctx, conversation.ID, role, "turn")
		if err != nil {
			t.Fatalf("AppendMessage err: %v", err)
		}
		prior = append(prior, message)
	}

	if _, err := svc.SendMessage(ctx, "user-1", conversation.ID, "one more thing"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	if generator.lastMessage != "one more thing" {
		t.Fatalf("unexpected current message: %q", generator.lastMessage)
	}
	// Window holds the last 10 turns including the new one; the new turn is
	// excluded from the history slice, leaving the 9 most recent prior turns.
	if len(generator.lastHistory) != 9 {
		t.Fatalf("expected history of 9, got %d", len(generator.lastHistory))
	}
	if generator.lastHistory[0].ID != prior[6].ID {
		t.Fatal("history does not start at the expected turn")
	}
	if generator.lastHistory[len(generator.lastHistory)-1].ID != prior[14].ID {
		t.Fatal("history does not end at the newest prior turn")
	}
}

func TestSendMessageShortHistoryExcludesCurrentTurn(t *testing.T) {
	svc, _, generator := newService()
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, "user-1", "", "I'm feeling stressed")
	if err != nil {
		t.Fatalf("first SendMessage err: %v", err)
	}

	if _, err := svc.SendMessage(ctx, "user-1", first.Conversation.ID, "thanks, that's helpful"); err != nil {
		t.Fatalf("second SendMessage err: %v", err)
	}

	if len(generator.lastHistory) != 2 {
		t.Fatalf("expected the prior exchange as history, got %d entries", len(generator.lastHistory))
	}
	for _, message := range generator.lastHistory {
		if message.Content == "thanks, that's helpful" {
			t.Fatal("current turn leaked into history")
		}
	}
}

func TestTitleSetOnlyOnFirstExchange(t *testing.T) {
	svc, _, generator := newService()
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, "user-1", "", "I'm feeling stressed about my exams")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if result.Conversation.Title == chat.DefaultTitle {
		t.Fatal("title not replaced after first exchange")
	}
	if result.Conversation.Title != "Managing Stress" {
		t.Fatalf("unexpected title: %q", result.Conversation.Title)
	}

	generator.title = "Something Else"
	second, err := svc.SendMessage(ctx, "user-1", result.Conversation.ID, "thanks")
	if err != nil {
		t.Fatalf("second SendMessage err: %v", err)
	}
	if second.Conversation.Title != "Managing Stress" {
		t.Fatalf("title changed on later exchange: %q", second.Conversation.Title)
	}
}

func TestTitleTruncated(t *testing.T) {
	svc, _, generator := newService()
	generator.title = strings.Repeat("long title ", 10)

	result, err := svc.SendMessage(context.Background(), "user-1", "", "hello")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if got := len([]rune(result.Conversation.Title)); got > 50 {
		t.Fatalf("title length %d exceeds limit", got)
	}
}

// failingLedger simulates a broken point ledger while leaving the rest of the
// store intact.
type failingLedger struct {
	store.Store
}

func (f *failingLedger) AppendPointAward(context.Context, string, int, string, string) (wellness.PointAward, error) {
	return wellness.PointAward{}, errors.New("ledger unavailable")
}

func TestAwardFailureDoesNotAffectMessages(t *testing.T) {
	st := store.NewMemory()
	generator := &stubGenerator{reply: "reply", title: "Title"}
	svc := coach.NewService(&failingLedger{Store: st}, generator)
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, "user-1", "", "hello")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if len(result.Messages) != 2 {
		t.Fatalf("expected 2 messages despite award failure, got %d", len(result.Messages))
	}

	awards, err := st.ListPointAwards(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListPointAwards err: %v", err)
	}
	if len(awards) != 0 {
		t.Fatalf("expected no awards, got %d", len(awards))
	}
}

// assistantWriteFailer rejects assistant turns only.
type assistantWriteFailer struct {
	store.Store
}

func (f *assistantWriteFailer) AppendMessage(ctx context.Context, conversationID, role, content string) (chat.Message, error) {
	if role == chat.RoleAssistant {
		return chat.Message{}, errors.New("write failed")
	}
	return f.Store.AppendMessage(ctx, conversationID, role, content)
}

func TestAssistantWriteFailureIsNonFatal(t *testing.T) {
	st := store.NewMemory()
	generator := &stubGenerator{reply: "reply", title: "Title"}
	svc := coach.NewService(&assistantWriteFailer{Store: st}, generator)
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, "user-1", "", "hello")
	if err != nil {
		t.Fatalf("expected success despite assistant write failure, got %v", err)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected only the user turn, got %d messages", len(result.Messages))
	}
	if result.Messages[0].Role != chat.RoleUser {
		t.Fatalf("unexpected surviving role: %s", result.Messages[0].Role)
	}

	// No completed round-trip, no points.
	awards, err := st.ListPointAwards(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListPointAwards err: %v", err)
	}
	if len(awards) != 0 {
		t.Fatalf("expected no awards after a lost assistant turn, got %d", len(awards))
	}
}

// userWriteFailer rejects user turns only.
type userWriteFailer struct {
	store.Store
}

func (f *userWriteFailer) AppendMessage(ctx context.Context, conversationID, role, content string) (chat.Message, error) {
	if role == chat.RoleUser {
		return chat.Message{}, errors.New("write failed")
	}
	return f.Store.AppendMessage(ctx, conversationID, role, content)
}

func TestUserWriteFailureAbortsCall(t *testing.T) {
	st := store.NewMemory()
	generator := &stubGenerator{reply: "reply", title: "Title"}
	svc := coach.NewService(&userWriteFailer{Store: st}, generator)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "user-1", "", "hello")
	if err == nil {
		t.Fatal("expected an error when the user turn cannot be persisted")
	}

	// Generation never runs on an uncommitted turn.
	if generator.responseCalls != 0 {
		t.Fatalf("generator invoked %d times after failed user write", generator.responseCalls)
	}

	conversations, err := st.ListConversations(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListConversations err: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("expected the provisioned conversation to remain, got %d", len(conversations))
	}
	messages, err := st.ListMessages(ctx, conversations[0].ID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(messages))
	}
	awards, err := st.ListPointAwards(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListPointAwards err: %v", err)
	}
	if len(awards) != 0 {
		t.Fatalf("expected no awards, got %d", len(awards))
	}
}

// conversationCreateFailer rejects conversation creation.
type conversationCreateFailer struct {
	store.Store
}

func (f *conversationCreateFailer) CreateConversation(context.Context, string, string) (chat.Conversation, error) {
	return chat.Conversation{}, errors.New("create failed")
}

func TestConversationCreateFailureAbortsCall(t *testing.T) {
	st := store.NewMemory()
	generator := &stubGenerator{reply: "reply", title: "Title"}
	svc := coach.NewService(&conversationCreateFailer{Store: st}, generator)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "user-1", "", "hello")
	if err == nil {
		t.Fatal("expected an error when the conversation cannot be created")
	}
	if generator.responseCalls != 0 {
		t.Fatalf("generator invoked %d times after failed conversation create", generator.responseCalls)
	}

	awards, err := st.ListPointAwards(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListPointAwards err: %v", err)
	}
	if len(awards) != 0 {
		t.Fatalf("expected no awards, got %d", len(awards))
	}
}

func TestSendMessageRejectsForeignConversation(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	mine, err := svc.StartConversation(ctx, "user-1")
	if err != nil {
		t.Fatalf("StartConversation err: %v", err)
	}

	if _, err := svc.SendMessage(ctx, "user-2", mine.ID, "hello"); !errors.Is(err, store.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}
