package service

import (
	"encoding/json"
	"errors"
	"time"

	"ai-persona-advisors/backend/internal/models"
	"ai-persona-advisors/backend/internal/repository"
	"ai-persona-advisors/backend/pkg/cache"
	"ai-persona-advisors/backend/pkg/logger"

	"gorm.io/gorm"
)

var (
	ErrPersonaNotFound           = errors.New("persona not found")
	ErrNotPersonaOwner           = errors.New("persona does not belong to this user")
	ErrInvalidCommunicationStyle = errors.New("invalid communication style")
)

// DefaultMarketplaceLimit bounds marketplace listings when no limit is given.
const DefaultMarketplaceLimit = 50

const marketplaceCacheTTL = 5 * time.Minute

// marketplaceCacheKey is the single key marketplace listings live under.
// Only the default-size listing is cached; smaller limits are served by
// slicing it, so invalidation is one delete.
const marketplaceCacheKey = "marketplace:personas"

// MarketplaceCache is the slice of the Redis client the marketplace uses.
type MarketplaceCache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
	Del(key string) error
}

// PersonaService handles persona lifecycle, the public marketplace and
// upvoting.
type PersonaService struct {
	repo         repository.PersonaRepository
	market       MarketplaceCache
	personaCache *cache.Cache
	log          *logger.Logger
}

// NewPersonaService creates a persona service. market may be nil, in which
// case marketplace listings are always read from the database. personaCache
// is the shared in-memory cache of persona snapshots used by the chat
// pipeline; it is flushed on update and delete so replies never use a
// stale prompt.
func NewPersonaService(repo repository.PersonaRepository, market MarketplaceCache, personaCache *cache.Cache, log *logger.Logger) *PersonaService {
	return &PersonaService{repo: repo, market: market, personaCache: personaCache, log: log}
}

// CreatePersona validates and stores a new persona owned by ownerID.
// Field lengths are enforced by request binding; the style enum is checked
// here so every stored persona compiles into a valid prompt.
func (s *PersonaService) CreatePersona(ownerID uint, req *models.CreatePersonaRequest) (*models.Persona, error) {
	if !models.IsValidCommunicationStyle(req.CommunicationStyle) {
		return nil, ErrInvalidCommunicationStyle
	}

	persona := &models.Persona{
		OwnerID:            ownerID,
		Name:               req.Name,
		Description:        req.Description,
		PersonalityPrompt:  req.PersonalityPrompt,
		Expertise:          req.Expertise,
		CommunicationStyle: req.CommunicationStyle,
		Traits:             req.Traits,
		IsPublic:           req.IsPublic,
	}

	if err := s.repo.Create(persona); err != nil {
		return nil, err
	}

	if persona.IsPublic {
		s.invalidateMarketplace()
	}
	return persona, nil
}

// GetPersona returns a persona by id.
func (s *PersonaService) GetPersona(id string) (*models.Persona, error) {
	persona, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonaNotFound
		}
		return nil, err
	}
	return persona, nil
}

// ListPersonas returns the personas owned by ownerID.
func (s *PersonaService) ListPersonas(ownerID uint) ([]models.Persona, error) {
	return s.repo.ListByOwner(ownerID)
}

// GetPersonasByIDs resolves personas in the given order, skipping unknown ids.
func (s *PersonaService) GetPersonasByIDs(ids []string) ([]models.Persona, error) {
	return s.repo.GetByIDs(ids)
}

// UpdatePersona applies a partial update. Only the owner may update; the
// upvote counter cannot be changed this way.
func (s *PersonaService) UpdatePersona(ownerID uint, id string, req *models.UpdatePersonaRequest) (*models.Persona, error) {
	persona, err := s.GetPersona(id)
	if err != nil {
		return nil, err
	}
	if persona.OwnerID != ownerID {
		return nil, ErrNotPersonaOwner
	}

	if req.CommunicationStyle != nil && !models.IsValidCommunicationStyle(*req.CommunicationStyle) {
		return nil, ErrInvalidCommunicationStyle
	}

	if req.Name != nil {
		persona.Name = *req.Name
	}
	if req.Description != nil {
		persona.Description = *req.Description
	}
	if req.PersonalityPrompt != nil {
		persona.PersonalityPrompt = *req.PersonalityPrompt
	}
	if req.Expertise != nil {
		persona.Expertise = *req.Expertise
	}
	if req.CommunicationStyle != nil {
		persona.CommunicationStyle = *req.CommunicationStyle
	}
	if req.Traits != nil {
		persona.Traits = *req.Traits
	}
	if req.IsPublic != nil {
		persona.IsPublic = *req.IsPublic
	}

	if err := s.repo.Update(persona); err != nil {
		return nil, err
	}

	s.invalidateMarketplace()
	s.invalidateSnapshots()
	return persona, nil
}

// DeletePersona removes a persona and its upvote records. Owner only.
func (s *PersonaService) DeletePersona(ownerID uint, id string) error {
	persona, err := s.GetPersona(id)
	if err != nil {
		return err
	}
	if persona.OwnerID != ownerID {
		return ErrNotPersonaOwner
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.invalidateMarketplace()
	s.invalidateSnapshots()
	return nil
}

// GetPublicPersonas lists marketplace personas ordered by upvotes descending.
// Listings up to the default limit are served from one cached Redis entry;
// larger limits bypass the cache and read the database directly.
func (s *PersonaService) GetPublicPersonas(limit int) ([]models.Persona, error) {
	if limit <= 0 {
		limit = DefaultMarketplaceLimit
	}
	if s.market == nil || limit > DefaultMarketplaceLimit {
		return s.repo.ListPublic(limit)
	}

	if cached, err := s.market.Get(marketplaceCacheKey); err == nil {
		var personas []models.Persona
		if err := json.Unmarshal([]byte(cached), &personas); err == nil {
			return capListing(personas, limit), nil
		}
	}

	personas, err := s.repo.ListPublic(DefaultMarketplaceLimit)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(personas); err == nil {
		if err := s.market.Set(marketplaceCacheKey, string(encoded), marketplaceCacheTTL); err != nil {
			s.log.Warn("failed to cache marketplace listing", "error", err.Error())
		}
	}
	return capListing(personas, limit), nil
}

// UpvotePersona records an upvote. Returns false when the user had already
// upvoted this persona; the count is incremented at most once per pair.
func (s *PersonaService) UpvotePersona(userID uint, personaID string) (bool, error) {
	if _, err := s.GetPersona(personaID); err != nil {
		return false, err
	}

	created, err := s.repo.Upvote(userID, personaID)
	if err != nil {
		return false, err
	}
	if created {
		s.invalidateMarketplace()
	}
	return created, nil
}

// RemoveUpvote removes an upvote. Returns false when there was none.
func (s *PersonaService) RemoveUpvote(userID uint, personaID string) (bool, error) {
	if _, err := s.GetPersona(personaID); err != nil {
		return false, err
	}

	removed, err := s.repo.RemoveUpvote(userID, personaID)
	if err != nil {
		return false, err
	}
	if removed {
		s.invalidateMarketplace()
	}
	return removed, nil
}

// HasUpvoted reports whether the user already upvoted the persona.
func (s *PersonaService) HasUpvoted(userID uint, personaID string) (bool, error) {
	return s.repo.HasUpvoted(userID, personaID)
}

func (s *PersonaService) invalidateMarketplace() {
	if s.market == nil {
		return
	}
	if err := s.market.Del(marketplaceCacheKey); err != nil {
		s.log.Warn("failed to invalidate marketplace cache", "error", err.Error())
	}
}

func (s *PersonaService) invalidateSnapshots() {
	if s.personaCache != nil {
		s.personaCache.Flush()
	}
}

func capListing(personas []models.Persona, limit int) []models.Persona {
	if len(personas) > limit {
		return personas[:limit]
	}
	return personas
}
