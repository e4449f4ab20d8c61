package ai

import (
	"context"

	"github.com/mindhaven/backend/internal/model/chat"
)

// TextGenerator produces coaching replies and conversation titles. Both
// operations always return usable text: implementations absorb backend
// failures internally, so callers never branch on a generation error.
type TextGenerator interface {
	// GenerateResponse answers the user's message given the prior turns of
	// the conversation. The newest user turn is passed as message, not
	// repeated inside history.
	GenerateResponse(ctx context.Context, message string, history []chat.Message) string

	// GenerateTitle names a conversation from its first exchange.
	GenerateTitle(ctx context.Context, userMessage, assistantReply string) string
}

const coachSystemPrompt = `You are a compassionate AI wellness coach for students. Your role is to:

1. Provide empathetic, supportive responses
2. Offer practical coping strategies for stress, anxiety, and other mental health challenges
3. Encourage healthy habits and self-care
4. Help students develop emotional awareness and resilience
5. Suggest relaxation techniques, mindfulness practices, and stress management tools
6. Always encourage professional help for serious mental health concerns

Guidelines:
- Be warm, understanding, and non-judgmental
- Keep responses concise but meaningful (2-3 paragraphs max)
- Focus on actionable advice and coping strategies
- Validate feelings while encouraging positive steps forward
- Use encouraging, hopeful language
- If someone mentions self-harm or crisis, always recommend immediate professional help

Remember: You're here to support, not replace professional mental health care.`
