package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"youbet/internal/database"
	"youbet/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, phone, handle, name string) *models.User {
	t.Helper()
	user := &models.User{Phone: phone, Handle: handle, Name: name}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	assert.Equal(t, code, appErr.Code)
}

func TestContactRequestRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRequestRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "+15551110001", "alice", "Alice")
	bob := createTestUser(t, db, "+15551110002", "bob", "Bob")

	t.Run("CreateAndGetByID", func(t *testing.T) {
		req := &models.ContactRequest{
			FromID:    alice.ID,
			ToPhone:   bob.Phone,
			ToUserID:  &bob.ID,
			Message:   "join my picks",
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
		err := repo.Create(ctx, req)
		assert.NoError(t, err)
		assert.NotZero(t, req.ID)

		fetched, err := repo.GetByID(ctx, req.ID)
		assert.NoError(t, err)
		assert.Equal(t, "join my picks", fetched.Message)
		assert.Equal(t, "Alice", fetched.From.Name)
		assert.Equal(t, "Bob", fetched.ToUser.Name)
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 99999)
		assertErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("DuplicatePendingRejected", func(t *testing.T) {
		first := &models.ContactRequest{
			FromID:    alice.ID,
			ToPhone:   "+15559990001",
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, first))

		second := &models.ContactRequest{
			FromID:    alice.ID,
			ToPhone:   "+15559990001",
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
		err := repo.Create(ctx, second)
		assertErrorCode(t, err, models.CodeDuplicateRequest)

		// A declined row no longer matches the partial index predicate,
		// so a fresh request to the same phone is allowed.
		assert.NoError(t, repo.Respond(ctx, first.ID, models.ContactRequestStatusDeclined, time.Now()))

		third := &models.ContactRequest{
			FromID:    alice.ID,
			ToPhone:   "+15559990001",
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, third))
	})

	t.Run("ListSentFiltersExpired", func(t *testing.T) {
		sender := createTestUser(t, db, "+15551110003", "carol", "Carol")
		now := time.Now()

		live := &models.ContactRequest{
			FromID:    sender.ID,
			ToPhone:   "+15559990002",
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: now.Add(time.Hour),
		}
		stale := &models.ContactRequest{
			FromID:    sender.ID,
			ToPhone:   "+15559990003",
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: now.Add(-time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, live))
		assert.NoError(t, repo.Create(ctx, stale))

		sent, err := repo.ListSent(ctx, sender.ID, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(sent))
		assert.Equal(t, live.ID, sent[0].ID)
	})

	t.Run("ListReceivedFiltersByTargetAndExpiry", func(t *testing.T) {
		target := createTestUser(t, db, "+15551110004", "dave", "Dave")
		now := time.Now()

		live := &models.ContactRequest{
			FromID:    alice.ID,
			ToPhone:   target.Phone,
			ToUserID:  &target.ID,
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: now.Add(time.Hour),
		}
		stale := &models.ContactRequest{
			FromID:    bob.ID,
			ToPhone:   target.Phone,
			ToUserID:  &target.ID,
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: now.Add(-time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, live))
		assert.NoError(t, repo.Create(ctx, stale))

		received, err := repo.ListReceived(ctx, target.ID, target.Phone, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(received))
		assert.Equal(t, live.ID, received[0].ID)
		assert.Equal(t, "Alice", received[0].From.Name)
	})

	t.Run("ListReceivedMatchesUnlinkedRequestsByPhone", func(t *testing.T) {
		// Invite sent before the recipient registered: no to_user_id, the
		// row must still show up in their received list.
		lateJoiner := createTestUser(t, db, "+15551110012", "erin2", "Erin")
		now := time.Now()

		unlinked := &models.ContactRequest{
			FromID:    alice.ID,
			ToPhone:   lateJoiner.Phone,
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: now.Add(time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, unlinked))

		received, err := repo.ListReceived(ctx, lateJoiner.ID, lateJoiner.Phone, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(received))
		assert.Equal(t, unlinked.ID, received[0].ID)

		// Another user with a different phone must not see it.
		stranger := createTestUser(t, db, "+15551110013", "finn2", "Finn")
		received, err = repo.ListReceived(ctx, stranger.ID, stranger.Phone, now)
		assert.NoError(t, err)
		assert.Equal(t, 0, len(received))
	})

	t.Run("RespondFirstWins", func(t *testing.T) {
		req := &models.ContactRequest{
			FromID:    alice.ID,
			ToPhone:   "+15559990004",
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, req))

		assert.NoError(t, repo.Respond(ctx, req.ID, models.ContactRequestStatusDeclined, time.Now()))

		err := repo.Respond(ctx, req.ID, models.ContactRequestStatusApproved, time.Now())
		assertErrorCode(t, err, models.CodeInvalidState)

		fetched, err := repo.GetByID(ctx, req.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.ContactRequestStatusDeclined, fetched.Status)
		assert.NotNil(t, fetched.RespondedAt)
	})

	t.Run("ApproveAndLink", func(t *testing.T) {
		from := createTestUser(t, db, "+15551110005", "erin", "Erin")
		to := createTestUser(t, db, "+15551110006", "frank", "Frank")

		req := &models.ContactRequest{
			FromID:    to.ID, // higher id sends, edge must still store lower id first
			ToPhone:   from.Phone,
			ToUserID:  &from.ID,
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, req))

		contact, err := repo.ApproveAndLink(ctx, req, time.Now())
		assert.NoError(t, err)
		assert.Equal(t, from.ID, contact.UserID)
		assert.Equal(t, to.ID, contact.ContactID)

		fetched, err := repo.GetByID(ctx, req.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.ContactRequestStatusApproved, fetched.Status)
		assert.Equal(t, from.ID, *fetched.ToUserID)
	})

	t.Run("ApproveAndLinkReusesExistingEdge", func(t *testing.T) {
		from := createTestUser(t, db, "+15551110007", "gail", "Gail")
		to := createTestUser(t, db, "+15551110008", "hank", "Hank")

		existing := &models.Contact{UserID: from.ID, ContactID: to.ID}
		assert.NoError(t, db.Create(existing).Error)

		req := &models.ContactRequest{
			FromID:    from.ID,
			ToPhone:   to.Phone,
			ToUserID:  &to.ID,
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, req))

		contact, err := repo.ApproveAndLink(ctx, req, time.Now())
		assert.NoError(t, err)
		assert.Equal(t, existing.ID, contact.ID)

		var count int64
		db.Model(&models.Contact{}).
			Where("user_id = ? AND contact_id = ?", from.ID, to.ID).
			Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ApproveAndLinkRejectsNonPending", func(t *testing.T) {
		from := createTestUser(t, db, "+15551110009", "iris", "Iris")
		to := createTestUser(t, db, "+15551110010", "jack", "Jack")

		req := &models.ContactRequest{
			FromID:    from.ID,
			ToPhone:   to.Phone,
			ToUserID:  &to.ID,
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, req))
		assert.NoError(t, repo.Respond(ctx, req.ID, models.ContactRequestStatusDeclined, time.Now()))

		_, err := repo.ApproveAndLink(ctx, req, time.Now())
		assertErrorCode(t, err, models.CodeInvalidState)
	})

	t.Run("ExpireBefore", func(t *testing.T) {
		sender := createTestUser(t, db, "+15551110011", "kate", "Kate")
		now := time.Now()

		for i, phone := range []string{"+15559990005", "+15559990006"} {
			req := &models.ContactRequest{
				FromID:    sender.ID,
				ToPhone:   phone,
				Status:    models.ContactRequestStatusPending,
				ExpiresAt: now.Add(time.Duration(-1-i) * time.Hour),
			}
			assert.NoError(t, repo.Create(ctx, req))
		}
		fresh := &models.ContactRequest{
			FromID:    sender.ID,
			ToPhone:   "+15559990007",
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: now.Add(time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, fresh))

		count, err := repo.ExpireBefore(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)

		still, err := repo.GetByID(ctx, fresh.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.ContactRequestStatusPending, still.Status)
	})

	t.Run("Delete", func(t *testing.T) {
		req := &models.ContactRequest{
			FromID:    alice.ID,
			ToPhone:   "+15559990008",
			Status:    models.ContactRequestStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		assert.NoError(t, repo.Create(ctx, req))
		assert.NoError(t, repo.Delete(ctx, req.ID))

		_, err := repo.GetByID(ctx, req.ID)
		assertErrorCode(t, err, models.CodeNotFound)
	})
}
