package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Communication styles a persona may adopt.
const (
	StyleFormal        = "Formal"
	StyleCasual        = "Casual"
	StyleHumorous      = "Humorous"
	StyleMotivational  = "Motivational"
	StylePhilosophical = "Philosophical"
	StyleDirect        = "Direct"
)

// CommunicationStyles lists the accepted values for validation.
var CommunicationStyles = []string{
	StyleFormal,
	StyleCasual,
	StyleHumorous,
	StyleMotivational,
	StylePhilosophical,
	StyleDirect,
}

// IsValidCommunicationStyle reports whether style is one of the accepted values.
func IsValidCommunicationStyle(style string) bool {
	for _, s := range CommunicationStyles {
		if s == style {
			return true
		}
	}
	return false
}

// Persona is an AI advisor identity template. Upvotes only changes through
// the upvote operations and never goes negative.
type Persona struct {
	ID                 string    `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID            uint      `gorm:"index;not null" json:"ownerId"`
	Name               string    `gorm:"not null" json:"name"`
	Description        string    `gorm:"not null" json:"description"`
	PersonalityPrompt  string    `gorm:"not null;type:text" json:"personalityPrompt"`
	Expertise          string    `json:"expertise"`
	CommunicationStyle string    `gorm:"not null" json:"communicationStyle"`
	Traits             string    `json:"traits,omitempty"`
	IsPublic           bool      `gorm:"index;default:false" json:"isPublic"`
	Upvotes            int       `gorm:"default:0" json:"upvotes"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when none was given.
func (p *Persona) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// CreatePersonaRequest is the payload for creating a persona.
type CreatePersonaRequest struct {
	Name               string `json:"name" binding:"required,min=3,max=50"`
	Description        string `json:"description" binding:"required,min=20,max=200"`
	PersonalityPrompt  string `json:"personalityPrompt" binding:"required,min=50,max=1000"`
	Expertise          string `json:"expertise" binding:"required"`
	CommunicationStyle string `json:"communicationStyle" binding:"required"`
	Traits             string `json:"traits"`
	IsPublic           bool   `json:"isPublic"`
}

// UpdatePersonaRequest is the payload for a partial persona update. Nil
// fields are left untouched; Upvotes is deliberately not updatable here.
type UpdatePersonaRequest struct {
	Name               *string `json:"name" binding:"omitempty,min=3,max=50"`
	Description        *string `json:"description" binding:"omitempty,min=20,max=200"`
	PersonalityPrompt  *string `json:"personalityPrompt" binding:"omitempty,min=50,max=1000"`
	Expertise          *string `json:"expertise"`
	CommunicationStyle *string `json:"communicationStyle"`
	Traits             *string `json:"traits"`
	IsPublic           *bool   `json:"isPublic"`
}

// PersonaUpvote records that a user upvoted a persona. Keyed by the pair so
// a user can upvote a persona at most once; each row corresponds to exactly
// one unit of the persona's upvote count.
type PersonaUpvote struct {
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	PersonaID string    `gorm:"primaryKey;type:uuid" json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
}
