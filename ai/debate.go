package ai

import (
	"context"
	"fmt"
	"strings"

	"ai-persona-advisors/backend/pkg/logger"
	"ai-persona-advisors/backend/shared/observability"
)

// failedReplyContent is the user-facing placeholder recorded when a persona
// cannot produce a reply.
const failedReplyContent = "Sorry, I couldn't generate a response at this time. Please try again."

// PersonaResponder is what the orchestrator drives once per persona.
type PersonaResponder interface {
	Respond(ctx context.Context, history []ChatMessage, persona PersonaProfile, userMessage string) (string, error)
}

// Orchestrator drives a debate round across a set of personas.
type Orchestrator struct {
	responder PersonaResponder
	log       *logger.Logger
}

// NewOrchestrator creates a debate orchestrator.
func NewOrchestrator(responder PersonaResponder, log *logger.Logger) *Orchestrator {
	return &Orchestrator{responder: responder, log: log}
}

// Debate addresses every persona strictly sequentially, in the given order.
// Sequential dispatch keeps reply order deterministic for the synthesis step
// and avoids concurrent appends to the conversation log, at the cost of
// latency growing linearly with persona count.
//
// A failing persona yields a placeholder reply and the round continues; the
// orchestrator adds no retry beyond what the completion client performs.
func (o *Orchestrator) Debate(ctx context.Context, userMessage string, personas []PersonaProfile, history []ChatMessage) []PersonaReply {
	observability.DebateRounds.Inc()

	// Transient prompt addition only; the stored user message stays as typed.
	prompt := debatePrompt(userMessage, personas)

	replies := make([]PersonaReply, 0, len(personas))
	for _, persona := range personas {
		content, err := o.responder.Respond(ctx, history, persona, prompt)
		if err != nil {
			o.log.LogError(err, "persona failed to reply in debate round", "persona", persona.Name)
			observability.DebatePersonaFailures.Inc()

			replies = append(replies, PersonaReply{
				PersonaID:   persona.ID,
				PersonaName: persona.Name,
				Content:     failedReplyContent,
				Succeeded:   false,
				ErrorDetail: err.Error(),
			})
			continue
		}

		replies = append(replies, PersonaReply{
			PersonaID:   persona.ID,
			PersonaName: persona.Name,
			Content:     content,
			Succeeded:   true,
		})
	}

	return replies
}

// debatePrompt augments the user message with a note naming all participants.
func debatePrompt(userMessage string, personas []PersonaProfile) string {
	names := make([]string, 0, len(personas))
	for _, p := range personas {
		names = append(names, p.Name)
	}

	return fmt.Sprintf(`%s

Note: You are in a group discussion with %s. Other advisors will also share their perspectives. Stay true to your character and provide your unique viewpoint.`,
		userMessage, strings.Join(names, ", "))
}
