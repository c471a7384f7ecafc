package tutor

import (
	"fmt"
	"strings"

	"github.com/jeffcav/english-teacher-ai/internal/domain"
)

const (
	// historyWindow is the fixed number of trailing turns embedded in the
	// generation prompt; older turns are silently dropped.
	historyWindow = 3

	coachingMarker     = "---COACHING---"
	conversationMarker = "---CONVERSATION---"
)

const systemPrompt = "You are an English tutor and friendly conversationalist. " +
	"Maintain conversation continuity by referring to previous exchanges when relevant."

func buildMessages(userText string, history []domain.Turn) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(userText, history)},
	}
}

// buildPrompt formats the dual-output instruction template, embedding the
// trailing history (user line plus the prior conversational reply, per turn)
// ahead of the current utterance.
func buildPrompt(userText string, history []domain.Turn) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var context strings.Builder
	if len(history) > 0 {
		context.WriteString("\n\nCONVERSATION CONTEXT (previous exchanges):\n")
		for i, turn := range history {
			fmt.Fprintf(&context, "Turn %d:\n", i+1)
			fmt.Fprintf(&context, "  User: %s\n", turn.User)
			fmt.Fprintf(&context, "  Your conversational response: %s\n", turn.Conversational)
		}
	}

	return fmt.Sprintf(`Analyze the user's speech and provide TWO separate responses.%s

CURRENT USER INPUT: "%s"

RESPONSE FORMAT (clearly separate both parts):
%s
Provide feedback on pronunciation, grammar, and naturalness. Keep it under 50 words. Be encouraging. Reference context if relevant.

%s
Respond naturally to what the user said, as if you were their friend having a conversation. Use context from previous exchanges. Keep it natural and conversational (under 50 words).
`, context.String(), userText, coachingMarker, conversationMarker)
}
