package ai

import "fmt"

// defaultTraits is used when a persona has no traits of its own.
const defaultTraits = "Stay true to character"

// CompilePersonaPrompt renders a persona's identity fields into the system
// prompt that drives the model. Pure and total; persona fields are validated
// at creation time.
func CompilePersonaPrompt(p PersonaProfile) string {
	traits := p.Traits
	if traits == "" {
		traits = defaultTraits
	}

	return fmt.Sprintf(`You are %s. %s

Communication style: %s
Expertise areas: %s
Key personality traits: %s

Stay in character at all times. Reference your background and expertise naturally. Keep responses concise (2-3 paragraphs max). Show personality through word choice and tone.`,
		p.Name,
		p.Description,
		p.CommunicationStyle,
		p.Expertise,
		traits,
	)
}
