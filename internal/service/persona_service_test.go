package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ai-persona-advisors/backend/internal/models"
	"ai-persona-advisors/backend/pkg/cache"
	"ai-persona-advisors/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPersonaFixture(t *testing.T) (*PersonaService, *fakePersonaRepo) {
	t.Helper()
	repo := newFakePersonaRepo()
	return NewPersonaService(repo, nil, nil, logger.New(logger.DefaultConfig())), repo
}

// fakeMarketplace is an in-memory stand-in for the Redis listing cache.
type fakeMarketplace struct {
	store map[string]string
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{store: make(map[string]string)}
}

func (f *fakeMarketplace) Get(key string) (string, error) {
	value, ok := f.store[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return value, nil
}

func (f *fakeMarketplace) Set(key string, value interface{}, expiration time.Duration) error {
	f.store[key] = value.(string)
	return nil
}

func (f *fakeMarketplace) Del(key string) error {
	delete(f.store, key)
	return nil
}

func createRequest() *models.CreatePersonaRequest {
	return &models.CreatePersonaRequest{
		Name:               "Ada",
		Description:        strings.Repeat("d", 30),
		PersonalityPrompt:  strings.Repeat("p", 60),
		Expertise:          "mathematics",
		CommunicationStyle: models.StyleDirect,
		Traits:             "precise",
		IsPublic:           true,
	}
}

func TestCreatePersona(t *testing.T) {
	svc, _ := newPersonaFixture(t)

	persona, err := svc.CreatePersona(1, createRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, persona.ID)
	assert.Equal(t, uint(1), persona.OwnerID)
	assert.Zero(t, persona.Upvotes)
}

func TestCreatePersonaRejectsUnknownStyle(t *testing.T) {
	svc, _ := newPersonaFixture(t)

	req := createRequest()
	req.CommunicationStyle = "Sarcastic"

	_, err := svc.CreatePersona(1, req)
	assert.ErrorIs(t, err, ErrInvalidCommunicationStyle)
}

func TestUpdatePersonaOwnershipAndPartialUpdate(t *testing.T) {
	svc, _ := newPersonaFixture(t)
	persona, err := svc.CreatePersona(1, createRequest())
	require.NoError(t, err)

	newName := "Ada Lovelace"
	_, err = svc.UpdatePersona(2, persona.ID, &models.UpdatePersonaRequest{Name: &newName})
	assert.ErrorIs(t, err, ErrNotPersonaOwner)

	updated, err := svc.UpdatePersona(1, persona.ID, &models.UpdatePersonaRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, persona.Description, updated.Description, "unset fields stay untouched")
}

func TestDeletePersonaOwnership(t *testing.T) {
	svc, repo := newPersonaFixture(t)
	persona, err := svc.CreatePersona(1, createRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeletePersona(2, persona.ID), ErrNotPersonaOwner)

	require.NoError(t, svc.DeletePersona(1, persona.ID))
	_, err = repo.GetByID(persona.ID)
	assert.Error(t, err)
}

func TestUpvoteIsIdempotent(t *testing.T) {
	svc, repo := newPersonaFixture(t)
	persona, err := svc.CreatePersona(1, createRequest())
	require.NoError(t, err)

	created, err := svc.UpvotePersona(2, persona.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// Second vote from the same user changes nothing.
	created, err = svc.UpvotePersona(2, persona.ID)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.GetByID(persona.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Upvotes)

	// A different user still counts.
	created, err = svc.UpvotePersona(3, persona.ID)
	require.NoError(t, err)
	assert.True(t, created)

	stored, err = repo.GetByID(persona.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Upvotes)
}

func TestRemoveUpvote(t *testing.T) {
	svc, repo := newPersonaFixture(t)
	persona, err := svc.CreatePersona(1, createRequest())
	require.NoError(t, err)

	// Removing a vote that was never cast is a no-op.
	removed, err := svc.RemoveUpvote(2, persona.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = svc.UpvotePersona(2, persona.ID)
	require.NoError(t, err)

	removed, err = svc.RemoveUpvote(2, persona.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	stored, err := repo.GetByID(persona.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Upvotes)

	upvoted, err := svc.HasUpvoted(2, persona.ID)
	require.NoError(t, err)
	assert.False(t, upvoted)
}

func TestUpvoteUnknownPersona(t *testing.T) {
	svc, _ := newPersonaFixture(t)

	_, err := svc.UpvotePersona(1, "missing-id")
	assert.ErrorIs(t, err, ErrPersonaNotFound)
}

func TestMarketplaceServesEveryLimitFromOneCacheEntry(t *testing.T) {
	repo := newFakePersonaRepo()
	market := newFakeMarketplace()
	svc := NewPersonaService(repo, market, nil, logger.New(logger.DefaultConfig()))

	for i := 0; i < 3; i++ {
		_, err := svc.CreatePersona(uint(i+1), createRequest())
		require.NoError(t, err)
	}

	listed, err := svc.GetPublicPersonas(2)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	assert.Len(t, market.store, 1, "all limits share a single cache entry")

	listed, err = svc.GetPublicPersonas(1)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Len(t, market.store, 1)
}

func TestMarketplaceCacheInvalidationCoversNonDefaultLimits(t *testing.T) {
	repo := newFakePersonaRepo()
	market := newFakeMarketplace()
	svc := NewPersonaService(repo, market, nil, logger.New(logger.DefaultConfig()))

	persona, err := svc.CreatePersona(1, createRequest())
	require.NoError(t, err)

	listed, err := svc.GetPublicPersonas(10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Zero(t, listed[0].Upvotes)
	require.Len(t, market.store, 1)

	// The vote must drop the entry a non-default limit was served from.
	_, err = svc.UpvotePersona(2, persona.ID)
	require.NoError(t, err)
	assert.Empty(t, market.store)

	listed, err = svc.GetPublicPersonas(10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].Upvotes)

	// Visibility changes drop it too.
	hidden := false
	_, err = svc.UpdatePersona(1, persona.ID, &models.UpdatePersonaRequest{IsPublic: &hidden})
	require.NoError(t, err)
	assert.Empty(t, market.store)

	listed, err = svc.GetPublicPersonas(10)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestPersonaChangesFlushSnapshotCache(t *testing.T) {
	repo := newFakePersonaRepo()
	snapshots := cache.NewCache()
	svc := NewPersonaService(repo, nil, snapshots, logger.New(logger.DefaultConfig()))

	persona, err := svc.CreatePersona(1, createRequest())
	require.NoError(t, err)

	snapshots.Set("conversation-personas:c1", "stale snapshot")

	newName := "Ada Lovelace"
	_, err = svc.UpdatePersona(1, persona.ID, &models.UpdatePersonaRequest{Name: &newName})
	require.NoError(t, err)

	_, ok := snapshots.Get("conversation-personas:c1")
	assert.False(t, ok, "updating a persona must drop cached snapshots")

	snapshots.Set("conversation-personas:c1", "stale snapshot")
	require.NoError(t, svc.DeletePersona(1, persona.ID))

	_, ok = snapshots.Get("conversation-personas:c1")
	assert.False(t, ok, "deleting a persona must drop cached snapshots")
}
