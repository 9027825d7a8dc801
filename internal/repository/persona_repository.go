package repository

import (
	"errors"

	"ai-persona-advisors/backend/internal/models"

	"gorm.io/gorm"
)

// PersonaRepository is the storage port for personas and their upvotes.
type PersonaRepository interface {
	Create(persona *models.Persona) error
	GetByID(id string) (*models.Persona, error)
	GetByIDs(ids []string) ([]models.Persona, error)
	ListByOwner(ownerID uint) ([]models.Persona, error)
	ListPublic(limit int) ([]models.Persona, error)
	Update(persona *models.Persona) error
	Delete(id string) error

	// Upvote returns false when the user had already upvoted the persona.
	Upvote(userID uint, personaID string) (bool, error)
	// RemoveUpvote returns false when there was no upvote to remove.
	RemoveUpvote(userID uint, personaID string) (bool, error)
	HasUpvoted(userID uint, personaID string) (bool, error)
}

type GormPersonaRepository struct {
	db *gorm.DB
}

func NewGormPersonaRepository(db *gorm.DB) *GormPersonaRepository {
	return &GormPersonaRepository{db: db}
}

func (r *GormPersonaRepository) Create(persona *models.Persona) error {
	return r.db.Create(persona).Error
}

func (r *GormPersonaRepository) GetByID(id string) (*models.Persona, error) {
	var persona models.Persona
	if err := r.db.First(&persona, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &persona, nil
}

// GetByIDs returns the personas in the order the ids were given. Unknown ids
// are skipped; duplicates in the input yield duplicates in the output.
func (r *GormPersonaRepository) GetByIDs(ids []string) ([]models.Persona, error) {
	var found []models.Persona
	if err := r.db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.Persona, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	personas := make([]models.Persona, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			personas = append(personas, p)
		}
	}
	return personas, nil
}

func (r *GormPersonaRepository) ListByOwner(ownerID uint) ([]models.Persona, error) {
	var personas []models.Persona
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&personas).Error
	if personas == nil {
		personas = []models.Persona{}
	}
	return personas, err
}

func (r *GormPersonaRepository) ListPublic(limit int) ([]models.Persona, error) {
	var personas []models.Persona
	err := r.db.Where("is_public = ?", true).
		Order("upvotes DESC").
		Limit(limit).
		Find(&personas).Error
	if personas == nil {
		personas = []models.Persona{}
	}
	return personas, err
}

func (r *GormPersonaRepository) Update(persona *models.Persona) error {
	return r.db.Save(persona).Error
}

func (r *GormPersonaRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("persona_id = ?", id).Delete(&models.PersonaUpvote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Persona{}, "id = ?", id).Error
	})
}

// Upvote creates the (user, persona) record and increments the counter in
// one transaction so the record count and the counter cannot drift apart.
func (r *GormPersonaRepository) Upvote(userID uint, personaID string) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PersonaUpvote
		err := tx.Where("user_id = ? AND persona_id = ?", userID, personaID).First(&existing).Error
		if err == nil {
			return nil // already upvoted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&models.PersonaUpvote{UserID: userID, PersonaID: personaID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Persona{}).Where("id = ?", personaID).
			UpdateColumn("upvotes", gorm.Expr("upvotes + 1")).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (r *GormPersonaRepository) RemoveUpvote(userID uint, personaID string) (bool, error) {
	removed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND persona_id = ?", userID, personaID).
			Delete(&models.PersonaUpvote{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil // wasn't upvoted
		}

		if err := tx.Model(&models.Persona{}).Where("id = ? AND upvotes > 0", personaID).
			UpdateColumn("upvotes", gorm.Expr("upvotes - 1")).Error; err != nil {
			return err
		}
		removed = true
		return nil
	})
	return removed, err
}

func (r *GormPersonaRepository) HasUpvoted(userID uint, personaID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PersonaUpvote{}).
		Where("user_id = ? AND persona_id = ?", userID, personaID).
		Count(&count).Error
	return count > 0, err
}
