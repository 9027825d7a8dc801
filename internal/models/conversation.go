package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationMode distinguishes one-on-one chats from debates.
type ConversationMode string

const (
	ModeSingle ConversationMode = "single"
	ModeDebate ConversationMode = "debate"
)

// Conversation participant bounds.
const (
	MinConversationPersonas = 1
	MaxConversationPersonas = 4
)

// DefaultConversationTitle is used until the first user message arrives.
const DefaultConversationTitle = "New Conversation"

// Conversation is a thread between one user and one or more personas. The
// ordered persona list is stored JSON-encoded in a text column.
type Conversation struct {
	ID            string           `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID       uint             `gorm:"index;not null" json:"ownerId"`
	PersonaIDs    string           `gorm:"not null;type:text" json:"-"`
	Mode          ConversationMode `gorm:"not null" json:"mode"`
	Title         string           `json:"title"`
	CreatedAt     time.Time        `json:"createdAt"`
	LastMessageAt time.Time        `gorm:"index" json:"lastMessageAt"`
}

// BeforeCreate assigns a UUID and defaults when missing.
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Title == "" {
		c.Title = DefaultConversationTitle
	}
	if c.LastMessageAt.IsZero() {
		c.LastMessageAt = time.Now()
	}
	return nil
}

// SetPersonaIDs stores the ordered persona list.
func (c *Conversation) SetPersonaIDs(ids []string) error {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	c.PersonaIDs = string(encoded)
	return nil
}

// PersonaIDList returns the ordered persona list.
func (c *Conversation) PersonaIDList() ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(c.PersonaIDs), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MarshalJSON inlines the decoded persona list into API responses.
func (c Conversation) MarshalJSON() ([]byte, error) {
	type alias Conversation
	ids, err := c.PersonaIDList()
	if err != nil {
		ids = []string{}
	}
	return json.Marshal(struct {
		alias
		PersonaIDs []string `json:"personaIds"`
	}{alias(c), ids})
}

// CreateConversationRequest is the payload for starting a conversation.
type CreateConversationRequest struct {
	PersonaIDs []string `json:"personaIds" binding:"required,min=1,max=4"`
}

// UpdateConversationRequest renames a conversation.
type UpdateConversationRequest struct {
	Title string `json:"title" binding:"required,max=100"`
}
