package ai

import "context"

// Responder produces one persona's reply to one user turn.
type Responder struct {
	client Completer
	window int
}

// NewResponder creates a responder bounded to the given context window size.
func NewResponder(client Completer, window int) *Responder {
	if window <= 0 {
		window = DefaultContextWindow
	}
	return &Responder{client: client, window: window}
}

// Respond builds the bounded context window from history, compiles the
// persona's system prompt, appends the new user turn and delegates to the
// completion client. The client's terminal error is propagated unchanged.
func (r *Responder) Respond(ctx context.Context, history []ChatMessage, persona PersonaProfile, userMessage string) (string, error) {
	messages := BuildContextWindow(history, r.window)
	messages = append(messages, PromptMessage{Role: RoleUser, Content: userMessage})

	return r.client.Complete(ctx, messages, CompilePersonaPrompt(persona))
}
