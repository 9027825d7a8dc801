package service

import (
	"errors"
	"time"

	"ai-persona-advisors/backend/internal/models"
	"ai-persona-advisors/backend/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotConversationOwner = errors.New("conversation does not belong to this user")
	ErrInvalidPersonaCount  = errors.New("conversations require between 1 and 4 personas")
	ErrUnknownPersonaInList = errors.New("one or more personas do not exist")
)

// titleLimit is where conversation titles get truncated.
const titleLimit = 50

// ConversationService handles conversation threads and their message logs.
type ConversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	personas      repository.PersonaRepository
}

// NewConversationService creates a conversation service.
func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	personas repository.PersonaRepository,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		personas:      personas,
	}
}

// CreateConversation starts a thread over the given ordered persona list.
// Mode is inferred: one persona means single, more means debate.
func (s *ConversationService) CreateConversation(ownerID uint, personaIDs []string) (*models.Conversation, error) {
	if len(personaIDs) < models.MinConversationPersonas || len(personaIDs) > models.MaxConversationPersonas {
		return nil, ErrInvalidPersonaCount
	}

	found, err := s.personas.GetByIDs(personaIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(personaIDs) {
		return nil, ErrUnknownPersonaInList
	}

	mode := models.ModeSingle
	if len(personaIDs) > 1 {
		mode = models.ModeDebate
	}

	conversation := &models.Conversation{
		OwnerID: ownerID,
		Mode:    mode,
	}
	if err := conversation.SetPersonaIDs(personaIDs); err != nil {
		return nil, err
	}

	if err := s.conversations.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// GetConversation returns a conversation owned by ownerID.
func (s *ConversationService) GetConversation(ownerID uint, id string) (*models.Conversation, error) {
	conversation, err := s.conversations.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conversation.OwnerID != ownerID {
		return nil, ErrNotConversationOwner
	}
	return conversation, nil
}

// ListConversations returns the user's threads, most recently active first.
func (s *ConversationService) ListConversations(ownerID uint) ([]models.Conversation, error) {
	return s.conversations.ListByOwner(ownerID)
}

// RenameConversation updates the title. Owner only.
func (s *ConversationService) RenameConversation(ownerID uint, id, title string) error {
	if _, err := s.GetConversation(ownerID, id); err != nil {
		return err
	}
	return s.conversations.UpdateTitle(id, title)
}

// DeleteConversation removes the thread and all of its messages.
func (s *ConversationService) DeleteConversation(ownerID uint, id string) error {
	if _, err := s.GetConversation(ownerID, id); err != nil {
		return err
	}
	return s.conversations.Delete(id)
}

// GetMessages returns the conversation's messages in total order.
func (s *ConversationService) GetMessages(ownerID uint, id string) ([]models.Message, error) {
	if _, err := s.GetConversation(ownerID, id); err != nil {
		return nil, err
	}
	return s.messages.ListByConversation(id)
}

// Touch bumps the conversation's last activity time.
func (s *ConversationService) Touch(id string) error {
	return s.conversations.Touch(id, time.Now())
}

// GenerateConversationTitle derives a title from the first user message:
// the first 50 characters, with an ellipsis appended when truncated.
// Truncation counts runes so a multibyte message never yields a title cut
// mid-character.
func GenerateConversationTitle(firstMessage string) string {
	runes := []rune(firstMessage)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit]) + "..."
	}
	return firstMessage
}
