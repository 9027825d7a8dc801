package ai

// DefaultContextWindow bounds how many prior turns are replayed to the model.
const DefaultContextWindow = 10

// BuildContextWindow returns the most recent max entries of history, oldest
// retained message first, reduced to role and content. The system prompt
// carries persona identity, so per-message attribution is dropped here.
func BuildContextWindow(history []ChatMessage, max int) []PromptMessage {
	if max <= 0 {
		max = DefaultContextWindow
	}

	start := 0
	if len(history) > max {
		start = len(history) - max
	}

	window := make([]PromptMessage, 0, len(history)-start)
	for _, msg := range history[start:] {
		window = append(window, PromptMessage{Role: msg.Role, Content: msg.Content})
	}
	return window
}
