package ai

import (
	"context"
	"fmt"
	"strings"

	"ai-persona-advisors/backend/shared/observability"
)

// moderatorSystemPrompt is the fixed system prompt for synthesis calls.
const moderatorSystemPrompt = "You are a neutral moderator and advisor."

// Synthesizer produces a moderator-style summary over one debate round.
type Synthesizer struct {
	client Completer
}

// NewSynthesizer creates a synthesizer backed by the given completion client.
func NewSynthesizer(client Completer) *Synthesizer {
	return &Synthesizer{client: client}
}

// Synthesize renders the question and the named replies into a single prompt
// and asks the model for agreements, disagreements and a recommendation.
// Callers handle the zero-replies case before reaching here; fails only as
// the completion client fails.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, replies []PersonaReply) (string, error) {
	observability.SynthesesTotal.Inc()

	messages := []PromptMessage{
		{Role: RoleUser, Content: synthesisPrompt(question, replies)},
	}
	return s.client.Complete(ctx, messages, moderatorSystemPrompt)
}

func synthesisPrompt(question string, replies []PersonaReply) string {
	parts := make([]string, 0, len(replies))
	for _, r := range replies {
		parts = append(parts, fmt.Sprintf("%s: %s", r.PersonaName, r.Content))
	}

	return fmt.Sprintf(`You are a neutral moderator analyzing different perspectives on a question.

Question: %s

The following advisors gave their perspectives:

%s

Provide a balanced synthesis highlighting:
1. Areas of agreement
2. Key disagreements
3. A recommended approach considering all views

Keep your synthesis concise and actionable.`,
		question, strings.Join(parts, "\n\n"))
}
