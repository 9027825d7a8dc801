package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ai-persona-advisors/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedResponder replies per persona name, recording dispatch order.
type scriptedResponder struct {
	failures map[string]error
	order    []string
	prompts  []string
}

func (s *scriptedResponder) Respond(ctx context.Context, history []ChatMessage, persona PersonaProfile, userMessage string) (string, error) {
	s.order = append(s.order, persona.Name)
	s.prompts = append(s.prompts, userMessage)
	if err, ok := s.failures[persona.Name]; ok {
		return "", err
	}
	return fmt.Sprintf("%s says hi", persona.Name), nil
}

func debatePersonas() []PersonaProfile {
	return []PersonaProfile{
		{ID: "p1", Name: "Ada"},
		{ID: "p2", Name: "Linus"},
		{ID: "p3", Name: "Grace"},
	}
}

func TestDebateDispatchesSequentially(t *testing.T) {
	responder := &scriptedResponder{}
	orchestrator := NewOrchestrator(responder, logger.New(logger.DefaultConfig()))

	replies := orchestrator.Debate(context.Background(), "What now?", debatePersonas(), nil)

	require.Len(t, replies, 3)
	assert.Equal(t, []string{"Ada", "Linus", "Grace"}, responder.order)
	for i, reply := range replies {
		assert.Equal(t, debatePersonas()[i].ID, reply.PersonaID)
		assert.True(t, reply.Succeeded)
	}
}

func TestDebateIsolatesFailingPersona(t *testing.T) {
	responder := &scriptedResponder{
		failures: map[string]error{"Linus": errors.New("upstream down")},
	}
	orchestrator := NewOrchestrator(responder, logger.New(logger.DefaultConfig()))

	replies := orchestrator.Debate(context.Background(), "What now?", debatePersonas(), nil)

	require.Len(t, replies, 3)

	assert.True(t, replies[0].Succeeded)
	assert.Equal(t, "Ada says hi", replies[0].Content)

	assert.False(t, replies[1].Succeeded)
	assert.Equal(t, failedReplyContent, replies[1].Content)
	assert.Equal(t, "upstream down", replies[1].ErrorDetail)

	// The round continued past the failure.
	assert.True(t, replies[2].Succeeded)
	assert.Equal(t, "Grace says hi", replies[2].Content)
}

func TestDebatePromptNamesParticipants(t *testing.T) {
	responder := &scriptedResponder{}
	orchestrator := NewOrchestrator(responder, logger.New(logger.DefaultConfig()))

	orchestrator.Debate(context.Background(), "Should we rewrite it?", debatePersonas(), nil)

	require.NotEmpty(t, responder.prompts)
	prompt := responder.prompts[0]
	assert.Contains(t, prompt, "Should we rewrite it?")
	assert.Contains(t, prompt, "group discussion with Ada, Linus, Grace")
}
