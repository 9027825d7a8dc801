package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCompleter captures the last completion request.
type recordingCompleter struct {
	lastSystemPrompt string
	lastMessages     []PromptMessage
	reply            string
	err              error
}

func (c *recordingCompleter) Complete(ctx context.Context, messages []PromptMessage, systemPrompt string) (string, error) {
	c.lastMessages = messages
	c.lastSystemPrompt = systemPrompt
	return c.reply, c.err
}

func TestSynthesizeBuildsModeratorPrompt(t *testing.T) {
	completer := &recordingCompleter{reply: "balanced summary"}
	synthesizer := NewSynthesizer(completer)

	replies := []PersonaReply{
		{PersonaName: "Ada", Content: "Invest in research."},
		{PersonaName: "Linus", Content: "Ship something first."},
	}

	summary, err := synthesizer.Synthesize(context.Background(), "What should we do?", replies)

	require.NoError(t, err)
	assert.Equal(t, "balanced summary", summary)
	assert.Equal(t, "You are a neutral moderator and advisor.", completer.lastSystemPrompt)

	require.Len(t, completer.lastMessages, 1)
	prompt := completer.lastMessages[0].Content
	assert.Contains(t, prompt, "Question: What should we do?")
	assert.Contains(t, prompt, "Ada: Invest in research.")
	assert.Contains(t, prompt, "Linus: Ship something first.")
	assert.Contains(t, prompt, "Areas of agreement")
}

func TestSynthesizePropagatesClientError(t *testing.T) {
	completer := &recordingCompleter{err: ErrNotConfigured}
	synthesizer := NewSynthesizer(completer)

	_, err := synthesizer.Synthesize(context.Background(), "Q", []PersonaReply{{PersonaName: "Ada", Content: "A"}})

	assert.ErrorIs(t, err, ErrNotConfigured)
}
