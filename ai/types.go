package ai

import "time"

// Role identifies who authored a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one persisted conversation turn as seen by the pipeline.
type ChatMessage struct {
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	PersonaID   string    `json:"personaId,omitempty"`
	PersonaName string    `json:"personaName,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// PromptMessage is the reduced {role, content} form sent to the model.
// Persona attribution and timestamps are stripped before dispatch.
type PromptMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// PersonaProfile carries the identity fields the prompt compiler renders.
type PersonaProfile struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	CommunicationStyle string `json:"communicationStyle"`
	Expertise          string `json:"expertise"`
	Traits             string `json:"traits,omitempty"`
}

// PersonaReply is one persona's outcome within a debate round. A failed
// persona still yields a reply entry so the round completes for the others.
type PersonaReply struct {
	PersonaID   string `json:"personaId"`
	PersonaName string `json:"personaName"`
	Content     string `json:"content"`
	Succeeded   bool   `json:"succeeded"`
	ErrorDetail string `json:"errorDetail,omitempty"`
}
