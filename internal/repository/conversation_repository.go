package repository

import (
	"time"

	"ai-persona-advisors/backend/internal/models"

	"gorm.io/gorm"
)

// ConversationRepository is the storage port for conversation threads.
type ConversationRepository interface {
	Create(conversation *models.Conversation) error
	GetByID(id string) (*models.Conversation, error)
	ListByOwner(ownerID uint) ([]models.Conversation, error)
	UpdateTitle(id, title string) error
	// Touch bumps LastMessageAt; called on every message append.
	Touch(id string, at time.Time) error
	// Delete removes the conversation and all of its messages.
	Delete(id string) error
}

// MessageRepository is the storage port for the append-only message log.
type MessageRepository interface {
	Append(message *models.Message) error
	ListByConversation(conversationID string) ([]models.Message, error)
	CountByConversation(conversationID string) (int64, error)
}

type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) Create(conversation *models.Conversation) error {
	return r.db.Create(conversation).Error
}

func (r *GormConversationRepository) GetByID(id string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.First(&conversation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *GormConversationRepository) ListByOwner(ownerID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.Where("owner_id = ?", ownerID).
		Order("last_message_at DESC").
		Find(&conversations).Error
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	return conversations, err
}

func (r *GormConversationRepository) UpdateTitle(id, title string) error {
	return r.db.Model(&models.Conversation{}).Where("id = ?", id).
		Update("title", title).Error
}

func (r *GormConversationRepository) Touch(id string, at time.Time) error {
	return r.db.Model(&models.Conversation{}).Where("id = ?", id).
		Update("last_message_at", at).Error
}

func (r *GormConversationRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, "id = ?", id).Error
	})
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Append(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByConversation returns messages in total order: timestamp ascending
// with the insert sequence breaking ties.
func (r *GormMessageRepository) ListByConversation(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, seq ASC").
		Find(&messages).Error
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, err
}

func (r *GormMessageRepository) CountByConversation(conversationID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}
