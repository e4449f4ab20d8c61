package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/mindhaven/backend/internal/config"
	"github.com/mindhaven/backend/internal/model/chat"
)

// titleExcerptLimit caps how much of the first user message is quoted in the
// title prompt.
const titleExcerptLimit = 100

const titlePromptTemplate = `Generate a short, meaningful title (3-5 words) for a wellness conversation that starts with: "{excerpt}..."`

// RemoteGenerator drives a hosted chat model through compiled eino chains.
// Every call is wrapped in an error boundary: on any failure the held
// RuleBasedGenerator answers instead, so callers never see a generation error.
type RemoteGenerator struct {
	replyChain compose.Runnable[map[string]any, *schema.Message]
	titleChain compose.Runnable[map[string]any, *schema.Message]
	fallback   *RuleBasedGenerator
}

// NewRemoteGenerator compiles the reply and title chains against the
// configured model.
func NewRemoteGenerator(ctx context.Context, cfg config.AIConfig, fallback *RuleBasedGenerator) (*RemoteGenerator, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	replyTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	replyChain := compose.NewChain[map[string]any, *schema.Message]()
	replyChain.AppendChatTemplate(replyTemplate)
	replyChain.AppendChatModel(chatModel)

	reply, err := replyChain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}

	titleTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage(titlePromptTemplate),
	)

	titleChain := compose.NewChain[map[string]any, *schema.Message]()
	titleChain.AppendChatTemplate(titleTemplate)
	titleChain.AppendChatModel(chatModel)

	title, err := titleChain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile title chain: %w", err)
	}

	return &RemoteGenerator{
		replyChain: reply,
		titleChain: title,
		fallback:   fallback,
	}, nil
}

// GenerateResponse runs the reply chain once; no retry, a failed attempt goes
// straight to the rule-based responder.
func (g *RemoteGenerator) GenerateResponse(ctx context.Context, message string, history []chat.Message) string {
	input := map[string]any{
		"system":  coachSystemPrompt,
		"history": toSchemaMessages(history),
		"query":   message,
	}

	response, err := g.replyChain.Invoke(ctx, input)
	if err != nil {
		log.Printf("[ai] generation failed, using rule-based reply: %v", err)
		return g.fallback.GenerateResponse(ctx, message, history)
	}

	return response.Content
}

// GenerateTitle asks the model for a 3-5 word label built from an excerpt of
// the first user message.
func (g *RemoteGenerator) GenerateTitle(ctx context.Context, userMessage, assistantReply string) string {
	input := map[string]any{"excerpt": truncateRunes(userMessage, titleExcerptLimit)}

	response, err := g.titleChain.Invoke(ctx, input)
	if err != nil {
		log.Printf("[ai] title generation failed, using rule-based title: %v", err)
		return g.fallback.GenerateTitle(ctx, userMessage, assistantReply)
	}

	return strings.TrimSpace(stripQuotes(response.Content))
}

func toSchemaMessages(history []chat.Message) []*schema.Message {
	if len(history) == 0 {
		return nil
	}

	messages := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case chat.RoleUser:
			messages = append(messages, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return messages
}

var quoteStripper = strings.NewReplacer(`"`, "", "'", "")

func stripQuotes(s string) string {
	return quoteStripper.Replace(s)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
