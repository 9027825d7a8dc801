package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompilePersonaPrompt(t *testing.T) {
	prompt := CompilePersonaPrompt(PersonaProfile{
		Name:               "Ada",
		Description:        "A pioneering computer scientist.",
		CommunicationStyle: "analytical",
		Expertise:          "mathematics, computing",
		Traits:             "precise, curious",
	})

	assert.Contains(t, prompt, "You are Ada. A pioneering computer scientist.")
	assert.Contains(t, prompt, "Communication style: analytical")
	assert.Contains(t, prompt, "Expertise areas: mathematics, computing")
	assert.Contains(t, prompt, "Key personality traits: precise, curious")
	assert.Contains(t, prompt, "Stay in character at all times.")
}

func TestCompilePersonaPromptDefaultTraits(t *testing.T) {
	prompt := CompilePersonaPrompt(PersonaProfile{
		Name:               "Ada",
		Description:        "A pioneering computer scientist.",
		CommunicationStyle: "analytical",
		Expertise:          "mathematics",
	})

	assert.Contains(t, prompt, "Key personality traits: Stay true to character")
}
