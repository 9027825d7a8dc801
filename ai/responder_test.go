package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondSendsWindowedHistoryAndCompiledPrompt(t *testing.T) {
	completer := &recordingCompleter{reply: "a reply"}
	responder := NewResponder(completer, 3)

	history := make([]ChatMessage, 0, 6)
	for i := 0; i < 6; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		history = append(history, ChatMessage{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	persona := PersonaProfile{
		Name:               "Ada",
		Description:        "a pioneering mathematician",
		CommunicationStyle: "Direct",
		Expertise:          "mathematics",
	}

	reply, err := responder.Respond(context.Background(), history, persona, "What next?")

	require.NoError(t, err)
	assert.Equal(t, "a reply", reply)

	// The last 3 history turns, then the fresh user turn.
	require.Len(t, completer.lastMessages, 4)
	assert.Equal(t, "turn 3", completer.lastMessages[0].Content)
	assert.Equal(t, RoleAssistant, completer.lastMessages[0].Role)
	assert.Equal(t, "turn 5", completer.lastMessages[2].Content)

	last := completer.lastMessages[3]
	assert.Equal(t, RoleUser, last.Role)
	assert.Equal(t, "What next?", last.Content)

	assert.Equal(t, CompilePersonaPrompt(persona), completer.lastSystemPrompt)
	assert.Contains(t, completer.lastSystemPrompt, "Ada")
}

func TestRespondPropagatesCompleterError(t *testing.T) {
	completer := &recordingCompleter{err: ErrNotConfigured}
	responder := NewResponder(completer, 0)

	_, err := responder.Respond(context.Background(), nil, PersonaProfile{Name: "Ada"}, "hi")

	assert.ErrorIs(t, err, ErrNotConfigured)
}
