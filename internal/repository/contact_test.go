package repository

import (
	"context"
	"testing"

	"youbet/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestContactRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "+15552220001", "alice2", "Alice Adams")
	bob := createTestUser(t, db, "+15552220002", "bob2", "Bob Brown")
	carol := createTestUser(t, db, "+15552220003", "carol2", "Carol Chen")

	t.Run("CreateStoresCanonicalOrder", func(t *testing.T) {
		// Caller order is reversed; the stored edge must not be.
		contact, err := repo.Create(ctx, bob.ID, alice.ID)
		assert.NoError(t, err)
		assert.Equal(t, alice.ID, contact.UserID)
		assert.Equal(t, bob.ID, contact.ContactID)
	})

	t.Run("CreateDuplicateRejected", func(t *testing.T) {
		_, err := repo.Create(ctx, alice.ID, bob.ID)
		assertErrorCode(t, err, models.CodeDuplicateRequest)
	})

	t.Run("GetBetweenUsersEitherOrder", func(t *testing.T) {
		c1, err := repo.GetBetweenUsers(ctx, alice.ID, bob.ID)
		assert.NoError(t, err)
		assert.NotNil(t, c1)

		c2, err := repo.GetBetweenUsers(ctx, bob.ID, alice.ID)
		assert.NoError(t, err)
		assert.NotNil(t, c2)
		assert.Equal(t, c1.ID, c2.ID)

		missing, err := repo.GetBetweenUsers(ctx, alice.ID, carol.ID)
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("ListReturnsBothDirections", func(t *testing.T) {
		_, err := repo.Create(ctx, carol.ID, bob.ID)
		assert.NoError(t, err)

		// Bob sits on the user_id side of one edge and the contact_id
		// side of the other; both must show up.
		contacts, err := repo.List(ctx, bob.ID, "", 50, 0)
		assert.NoError(t, err)
		assert.Equal(t, 2, len(contacts))
		for _, c := range contacts {
			assert.True(t, c.HasEndpoint(bob.ID))
		}
	})

	t.Run("ListSearchMatchesCounterpartName", func(t *testing.T) {
		contacts, err := repo.List(ctx, bob.ID, "carol", 50, 0)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(contacts))
		assert.Equal(t, carol.ID, contacts[0].Counterpart(bob.ID))

		contacts, err = repo.List(ctx, bob.ID, "zelda", 50, 0)
		assert.NoError(t, err)
		assert.Equal(t, 0, len(contacts))
	})

	t.Run("ListExcludesBlocked", func(t *testing.T) {
		edge, err := repo.GetBetweenUsers(ctx, alice.ID, bob.ID)
		assert.NoError(t, err)
		assert.NoError(t, repo.SetBlocked(ctx, edge.ID, true))

		contacts, err := repo.List(ctx, bob.ID, "", 50, 0)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(contacts))
		assert.Equal(t, carol.ID, contacts[0].Counterpart(bob.ID))

		assert.NoError(t, repo.SetBlocked(ctx, edge.ID, false))
		contacts, err = repo.List(ctx, bob.ID, "", 50, 0)
		assert.NoError(t, err)
		assert.Equal(t, 2, len(contacts))
	})

	t.Run("SetFavorite", func(t *testing.T) {
		edge, err := repo.GetBetweenUsers(ctx, bob.ID, carol.ID)
		assert.NoError(t, err)
		assert.NoError(t, repo.SetFavorite(ctx, edge.ID, true))

		fetched, err := repo.GetByID(ctx, edge.ID)
		assert.NoError(t, err)
		assert.True(t, fetched.IsFavorite)
	})

	t.Run("Delete", func(t *testing.T) {
		dave := createTestUser(t, db, "+15552220004", "dave2", "Dave Diaz")
		edge, err := repo.Create(ctx, alice.ID, dave.ID)
		assert.NoError(t, err)

		assert.NoError(t, repo.Delete(ctx, edge.ID))

		missing, err := repo.GetBetweenUsers(ctx, alice.ID, dave.ID)
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})
}
