package ai

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/mindhaven/backend/internal/model/chat"
)

// Simulated latency window for rule-based replies, keeping the UI's loading
// state consistent with the remote path.
const (
	minReplyDelay = 1 * time.Second
	maxReplyDelay = 3 * time.Second
)

// replyCategories are checked in order; the first match wins, so a message
// touching several topics resolves deterministically.
var replyCategories = []struct {
	keywords []string
	reply    string
}{
	{
		keywords: []string{"stress", "overwhelm"},
		reply:    "I understand you're feeling stressed. It's completely normal, especially as a student. Try the 4-7-8 breathing technique: inhale for 4 counts, hold for 7, exhale for 8. This can help activate your body's relaxation response. Remember, you're stronger than you think! 💙",
	},
	{
		keywords: []string{"anxious", "anxiety"},
		reply:    "Anxiety can feel overwhelming, but you're not alone in this. Try the 5-4-3-2-1 grounding technique: name 5 things you can see, 4 you can touch, 3 you can hear, 2 you can smell, and 1 you can taste. This helps bring you back to the present moment. How are you feeling right now?",
	},
	{
		keywords: []string{"sleep", "tired"},
		reply:    "Sleep is so important for mental health! Try creating a bedtime routine: dim the lights 1 hour before bed, avoid screens, and try some gentle stretching or reading. Your mind and body will thank you. What's your current sleep schedule like?",
	},
	{
		keywords: []string{"sad", "down", "depressed"},
		reply:    "I hear you, and I want you to know that your feelings are valid. It's okay to feel sad sometimes. Have you been able to connect with friends or family recently? Sometimes talking to someone we trust can help. Also, gentle movement like a short walk can boost mood naturally. 🌱",
	},
	{
		keywords: []string{"exam", "study", "academic"},
		reply:    "Academic pressure is real! Try breaking your study sessions into 25-minute focused blocks with 5-minute breaks (the Pomodoro Technique). Remember to celebrate small wins along the way. You've got this! What subject are you working on?",
	},
}

// genericReplies is the pool drawn from when no category matches.
var genericReplies = []string{
	"I understand you're going through a challenging time. It's completely normal to feel overwhelmed sometimes, especially as a student. Remember that seeking support is a sign of strength, not weakness. Have you tried any breathing exercises or mindfulness techniques recently?",
	"Thank you for sharing that with me. It sounds like you're dealing with a lot right now. One technique that many students find helpful is the 5-4-3-2-1 grounding exercise: name 5 things you can see, 4 you can touch, 3 you can hear, 2 you can smell, and 1 you can taste. This can help when feeling anxious or overwhelmed.",
	"I hear you, and your feelings are completely valid. Academic pressure can be really intense. Have you considered breaking down your tasks into smaller, more manageable chunks? Sometimes when everything feels overwhelming, focusing on just the next small step can make a big difference.",
	"It's great that you're taking time to check in with yourself. Self-awareness is such an important part of mental wellness. How has your sleep been lately? Getting quality rest can have a huge impact on how we feel and cope with stress.",
	"I'm glad you're reaching out. Remember that it's okay to not be okay sometimes. What's one small thing you could do today to take care of yourself? It could be as simple as taking a short walk, listening to your favorite song, or reaching out to a friend.",
}

// titleCategories mirror the reply categories but carry short labels and a
// slightly different priority order.
var titleCategories = []struct {
	keywords []string
	title    string
}{
	{keywords: []string{"stress"}, title: "Managing Stress"},
	{keywords: []string{"anxiety"}, title: "Anxiety Support"},
	{keywords: []string{"sleep"}, title: "Sleep Help"},
	{keywords: []string{"study", "exam"}, title: "Academic Support"},
	{keywords: []string{"sad", "down"}, title: "Emotional Support"},
}

const genericTitle = "Wellness Chat"

// RuleBasedGenerator is the deterministic, keyword-driven substitute used when
// no remote backend is configured or the remote call fails.
type RuleBasedGenerator struct {
	sleep func(ctx context.Context, d time.Duration)
}

// NewRuleBasedGenerator builds the responder with its default latency
// simulation.
func NewRuleBasedGenerator() *RuleBasedGenerator {
	return &RuleBasedGenerator{sleep: sleepContext}
}

// GenerateResponse classifies the message against the ordered keyword
// categories and returns the matching canned reply, or a random generic one.
func (g *RuleBasedGenerator) GenerateResponse(ctx context.Context, message string, _ []chat.Message) string {
	delay := minReplyDelay + rand.N(maxReplyDelay-minReplyDelay)
	g.sleep(ctx, delay)

	if reply, ok := classifyReply(message); ok {
		return reply
	}
	return genericReplies[rand.IntN(len(genericReplies))]
}

// GenerateTitle labels the conversation from its first user message. No delay
// here; titling is not user-visible latency.
func (g *RuleBasedGenerator) GenerateTitle(_ context.Context, userMessage, _ string) string {
	lowered := strings.ToLower(userMessage)
	for _, category := range titleCategories {
		for _, keyword := range category.keywords {
			if strings.Contains(lowered, keyword) {
				return category.title
			}
		}
	}
	return genericTitle
}

func classifyReply(message string) (string, bool) {
	lowered := strings.ToLower(message)
	for _, category := range replyCategories {
		for _, keyword := range category.keywords {
			if strings.Contains(lowered, keyword) {
				return category.reply, true
			}
		}
	}
	return "", false
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
