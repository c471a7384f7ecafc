package tutor

import (
	"context"
	"log"
	"strings"

	"github.com/jeffcav/english-teacher-ai/internal/domain"
)

// Fixed substitutes for the degrade-don't-fail policy: the pipeline must
// always return something speakable, whatever the LLM did.
const (
	fallbackConversational = "Thank you for sharing that!"

	fallbackCoachingEmptyInput = "I didn't catch any words that time. " +
		"Take a breath and give it another go, you're doing great!"

	fallbackCoachingUnavailable = "Sorry, I couldn't put feedback together " +
		"for that one. Let's keep practicing!"
	fallbackConversationalUnavailable = "Sorry, I missed that. " +
		"Could you say it one more time?"
)

// LLMClient generates a single chat completion for a prompt.
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

// Generator produces the two text artifacts of a turn from a single LLM
// call. It never returns an error: a failed or unparsable completion
// degrades to fixed placeholder text.
type Generator struct {
	llm LLMClient
}

func NewGenerator(llm LLMClient) *Generator {
	return &Generator{llm: llm}
}

// Generate returns (coaching, conversational), both guaranteed non-empty.
// One attempt against the LLM, no retry.
func (g *Generator) Generate(ctx context.Context, model, userText string, history []domain.Turn) (string, string) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return fallbackCoachingEmptyInput, fallbackConversational
	}

	raw, err := g.llm.Chat(ctx, model, buildMessages(userText, history))
	if err != nil {
		log.Printf("generation degraded, using fallback text: %v", err)
		return fallbackCoachingUnavailable, fallbackConversationalUnavailable
	}

	split := splitCompletion(raw)
	coaching := stripTags(split.coaching)
	conversational := stripTags(split.conversational)

	if coaching == "" {
		coaching = fallbackCoachingUnavailable
	}
	if conversational == "" {
		conversational = fallbackConversational
	}
	return coaching, conversational
}
