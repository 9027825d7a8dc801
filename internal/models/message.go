package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one immutable turn within a conversation. Ordering is by
// Timestamp ascending with Seq as a monotonic tiebreak so the order is
// total even when timestamps collide. Messages are append-only and removed
// only by conversation cascade delete.
type Message struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string    `gorm:"index;not null" json:"conversationId"`
	Seq            uint64    `gorm:"autoIncrement;uniqueIndex" json:"-"`
	Role           string    `gorm:"not null" json:"role"`
	Content        string    `gorm:"not null;type:text" json:"content"`
	PersonaID      string    `json:"personaId,omitempty"`
	PersonaName    string    `json:"personaName,omitempty"`
	Succeeded      bool      `gorm:"default:true" json:"succeeded"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
	CreatedAt      time.Time `json:"-"`
}

// BeforeCreate assigns a UUID and server-side timestamp when missing.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return nil
}

// SendMessageRequest is the payload for sending a user turn.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
