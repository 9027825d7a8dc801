package ai

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func historyOf(n int) []ChatMessage {
	history := make([]ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		history = append(history, ChatMessage{Role: role, Content: fmt.Sprintf("turn-%d", i)})
	}
	return history
}

func TestBuildContextWindowKeepsRecentTurns(t *testing.T) {
	window := BuildContextWindow(historyOf(15), 10)

	assert.Len(t, window, 10)
	assert.Equal(t, "turn-5", window[0].Content)
	assert.Equal(t, "turn-14", window[len(window)-1].Content)
}

func TestBuildContextWindowShortHistory(t *testing.T) {
	window := BuildContextWindow(historyOf(3), 10)

	assert.Len(t, window, 3)
	assert.Equal(t, "turn-0", window[0].Content)
}

func TestBuildContextWindowZeroMaxUsesDefault(t *testing.T) {
	window := BuildContextWindow(historyOf(25), 0)

	assert.Len(t, window, DefaultContextWindow)
}

func TestBuildContextWindowPreservesRoles(t *testing.T) {
	window := BuildContextWindow(historyOf(4), 10)

	assert.Equal(t, RoleUser, window[0].Role)
	assert.Equal(t, RoleAssistant, window[1].Role)
}
