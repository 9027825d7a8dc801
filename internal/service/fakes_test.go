package service

import (
	"fmt"
	"time"

	"ai-persona-advisors/backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes backing the service tests.

type fakePersonaRepo struct {
	personas map[string]*models.Persona
	upvotes  map[string]bool
}

func newFakePersonaRepo() *fakePersonaRepo {
	return &fakePersonaRepo{
		personas: make(map[string]*models.Persona),
		upvotes:  make(map[string]bool),
	}
}

func upvoteKey(userID uint, personaID string) string {
	return fmt.Sprintf("%d:%s", userID, personaID)
}

func (r *fakePersonaRepo) Create(persona *models.Persona) error {
	if persona.ID == "" {
		persona.ID = uuid.NewString()
	}
	copied := *persona
	r.personas[persona.ID] = &copied
	return nil
}

func (r *fakePersonaRepo) GetByID(id string) (*models.Persona, error) {
	persona, ok := r.personas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *persona
	return &copied, nil
}

func (r *fakePersonaRepo) GetByIDs(ids []string) ([]models.Persona, error) {
	var found []models.Persona
	for _, id := range ids {
		if persona, ok := r.personas[id]; ok {
			found = append(found, *persona)
		}
	}
	return found, nil
}

func (r *fakePersonaRepo) ListByOwner(ownerID uint) ([]models.Persona, error) {
	var found []models.Persona
	for _, persona := range r.personas {
		if persona.OwnerID == ownerID {
			found = append(found, *persona)
		}
	}
	return found, nil
}

func (r *fakePersonaRepo) ListPublic(limit int) ([]models.Persona, error) {
	var found []models.Persona
	for _, persona := range r.personas {
		if persona.IsPublic {
			found = append(found, *persona)
		}
	}
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (r *fakePersonaRepo) Update(persona *models.Persona) error {
	copied := *persona
	r.personas[persona.ID] = &copied
	return nil
}

func (r *fakePersonaRepo) Delete(id string) error {
	delete(r.personas, id)
	return nil
}

func (r *fakePersonaRepo) Upvote(userID uint, personaID string) (bool, error) {
	key := upvoteKey(userID, personaID)
	if r.upvotes[key] {
		return false, nil
	}
	r.upvotes[key] = true
	r.personas[personaID].Upvotes++
	return true, nil
}

func (r *fakePersonaRepo) RemoveUpvote(userID uint, personaID string) (bool, error) {
	key := upvoteKey(userID, personaID)
	if !r.upvotes[key] {
		return false, nil
	}
	delete(r.upvotes, key)
	r.personas[personaID].Upvotes--
	return true, nil
}

func (r *fakePersonaRepo) HasUpvoted(userID uint, personaID string) (bool, error) {
	return r.upvotes[upvoteKey(userID, personaID)], nil
}

type fakeConversationRepo struct {
	conversations map[string]*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*models.Conversation)}
}

func (r *fakeConversationRepo) Create(conversation *models.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.NewString()
	}
	if conversation.Title == "" {
		conversation.Title = models.DefaultConversationTitle
	}
	if conversation.LastMessageAt.IsZero() {
		conversation.LastMessageAt = time.Now()
	}
	copied := *conversation
	r.conversations[conversation.ID] = &copied
	return nil
}

func (r *fakeConversationRepo) GetByID(id string) (*models.Conversation, error) {
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *conversation
	return &copied, nil
}

func (r *fakeConversationRepo) ListByOwner(ownerID uint) ([]models.Conversation, error) {
	var found []models.Conversation
	for _, conversation := range r.conversations {
		if conversation.OwnerID == ownerID {
			found = append(found, *conversation)
		}
	}
	return found, nil
}

func (r *fakeConversationRepo) UpdateTitle(id, title string) error {
	conversation, ok := r.conversations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conversation.Title = title
	return nil
}

func (r *fakeConversationRepo) Touch(id string, at time.Time) error {
	conversation, ok := r.conversations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conversation.LastMessageAt = at
	return nil
}

func (r *fakeConversationRepo) Delete(id string) error {
	delete(r.conversations, id)
	return nil
}

type fakeMessageRepo struct {
	messages []models.Message
	seq      uint64
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Append(message *models.Message) error {
	r.seq++
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	message.Seq = r.seq
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	r.messages = append(r.messages, *message)
	return nil
}

func (r *fakeMessageRepo) ListByConversation(conversationID string) ([]models.Message, error) {
	found := []models.Message{}
	for _, message := range r.messages {
		if message.ConversationID == conversationID {
			found = append(found, message)
		}
	}
	return found, nil
}

func (r *fakeMessageRepo) CountByConversation(conversationID string) (int64, error) {
	found, _ := r.ListByConversation(conversationID)
	return int64(len(found)), nil
}
