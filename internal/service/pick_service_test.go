package service

import (
	"context"
	"testing"
	"time"

	"youbet/internal/database"
	"youbet/internal/models"
	"youbet/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func newTestPickService(db *gorm.DB) *PickService {
	return NewPickService(
		repository.NewPickRepository(db),
		repository.NewEventRepository(db),
		repository.NewUserRepository(db),
	)
}

func seedServiceUser(t *testing.T, db *gorm.DB, phone, handle string) *models.User {
	t.Helper()
	user := &models.User{Phone: phone, Handle: handle, Name: handle}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestPickServiceCreate(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPickService(db)
	ctx := context.Background()
	user := seedServiceUser(t, db, "+15558880001", "creator")

	t.Run("Valid pick", func(t *testing.T) {
		pick, err := svc.Create(ctx, user.ID, CreatePickInput{
			Selection: "Chiefs -3.5",
			Odds:      1.91,
			Stake:     100,
		})
		if err != nil {
			t.Fatalf("create pick: %v", err)
		}
		if pick.Status != models.PickStatusPending {
			t.Fatalf("expected PENDING, got %s", pick.Status)
		}
		if pick.Type != models.PickTypePrediction {
			t.Fatalf("expected default PREDICTION type, got %s", pick.Type)
		}
		if pick.User.Name != "creator" {
			t.Fatalf("expected author preloaded, got %q", pick.User.Name)
		}
	})

	t.Run("Missing selection", func(t *testing.T) {
		_, err := svc.Create(ctx, user.ID, CreatePickInput{})
		assertAppErrorCode(t, err, models.CodeInvalidRequest)
	})

	t.Run("Unknown event", func(t *testing.T) {
		eventID := uint(9999)
		_, err := svc.Create(ctx, user.ID, CreatePickInput{
			Selection: "Over 210",
			EventID:   &eventID,
		})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestPickServiceSettle(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPickService(db)
	ctx := context.Background()

	owner := seedServiceUser(t, db, "+15558880002", "settler")
	other := seedServiceUser(t, db, "+15558880003", "other")

	newPick := func(t *testing.T, stake, odds float64) *models.Pick {
		t.Helper()
		pick, err := svc.Create(ctx, owner.ID, CreatePickInput{
			Selection: "ML", Stake: stake, Odds: odds,
		})
		if err != nil {
			t.Fatalf("create pick: %v", err)
		}
		return pick
	}

	t.Run("Win pays stake times odds", func(t *testing.T) {
		pick := newPick(t, 100, 2.0)
		settled, err := svc.Settle(ctx, owner.ID, pick.ID, models.PickStatusWon)
		if err != nil {
			t.Fatalf("settle: %v", err)
		}
		if settled.Payout != 200 {
			t.Fatalf("expected payout 200, got %v", settled.Payout)
		}

		var reloaded models.User
		db.First(&reloaded, owner.ID)
		if reloaded.TotalPicks != 1 || reloaded.TotalWins != 1 {
			t.Fatalf("unexpected stats: %+v", reloaded)
		}
		if reloaded.TotalProfit != 100 {
			t.Fatalf("expected profit 100, got %v", reloaded.TotalProfit)
		}
		if reloaded.WinRateLifetime != 1.0 {
			t.Fatalf("expected win rate 1.0, got %v", reloaded.WinRateLifetime)
		}
	})

	t.Run("Loss zeroes the payout", func(t *testing.T) {
		pick := newPick(t, 50, 1.8)
		settled, err := svc.Settle(ctx, owner.ID, pick.ID, models.PickStatusLost)
		if err != nil {
			t.Fatalf("settle: %v", err)
		}
		if settled.Payout != 0 {
			t.Fatalf("expected payout 0, got %v", settled.Payout)
		}

		var reloaded models.User
		db.First(&reloaded, owner.ID)
		if reloaded.TotalLosses != 1 {
			t.Fatalf("expected 1 loss, got %d", reloaded.TotalLosses)
		}
		if reloaded.TotalProfit != 50 {
			t.Fatalf("expected cumulative profit 50, got %v", reloaded.TotalProfit)
		}
		if reloaded.WinRateLifetime != 0.5 {
			t.Fatalf("expected win rate 0.5, got %v", reloaded.WinRateLifetime)
		}
	})

	t.Run("Push returns the stake", func(t *testing.T) {
		pick := newPick(t, 75, 1.9)
		settled, err := svc.Settle(ctx, owner.ID, pick.ID, models.PickStatusPush)
		if err != nil {
			t.Fatalf("settle: %v", err)
		}
		if settled.Payout != 75 {
			t.Fatalf("expected payout 75, got %v", settled.Payout)
		}
	})

	t.Run("Only the owner settles", func(t *testing.T) {
		pick := newPick(t, 10, 2.0)
		_, err := svc.Settle(ctx, other.ID, pick.ID, models.PickStatusWon)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("Settling twice conflicts", func(t *testing.T) {
		pick := newPick(t, 10, 2.0)
		if _, err := svc.Settle(ctx, owner.ID, pick.ID, models.PickStatusWon); err != nil {
			t.Fatalf("settle: %v", err)
		}
		_, err := svc.Settle(ctx, owner.ID, pick.ID, models.PickStatusLost)
		assertAppErrorCode(t, err, models.CodeInvalidState)
	})

	t.Run("Pending is not a settlement status", func(t *testing.T) {
		pick := newPick(t, 10, 2.0)
		_, err := svc.Settle(ctx, owner.ID, pick.ID, models.PickStatusPending)
		assertAppErrorCode(t, err, models.CodeInvalidRequest)
	})
}

func TestFeedServiceGet(t *testing.T) {
	db := setupServiceDB(t)
	feed := NewFeedService(
		repository.NewPickRepository(db),
		repository.NewContactRepository(db),
	)
	ctx := context.Background()

	me := seedServiceUser(t, db, "+15558880004", "reader")
	friend := seedServiceUser(t, db, "+15558880005", "friend")
	outsider := seedServiceUser(t, db, "+15558880006", "outsider")

	if err := db.Create(&models.Contact{UserID: me.ID, ContactID: friend.ID}).Error; err != nil {
		t.Fatalf("create edge: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	seedPick := func(t *testing.T, userID uint, offset time.Duration) {
		t.Helper()
		pick := models.Pick{
			UserID:    userID,
			Selection: "pick",
			CreatedAt: base.Add(offset),
		}
		if err := db.Create(&pick).Error; err != nil {
			t.Fatalf("create pick: %v", err)
		}
	}

	// More than one page of picks from the caller and their contact, plus
	// noise from a non-contact that must never surface.
	for i := 0; i < FeedPageSize; i++ {
		seedPick(t, me.ID, time.Duration(2*i)*time.Minute)
		seedPick(t, friend.ID, time.Duration(2*i+1)*time.Minute)
	}
	seedPick(t, outsider.ID, 500*time.Minute)

	page, err := feed.Get(ctx, me.ID, "")
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(page.Picks) != FeedPageSize {
		t.Fatalf("expected %d picks, got %d", FeedPageSize, len(page.Picks))
	}
	if page.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}
	for i, pick := range page.Picks {
		if pick.UserID == outsider.ID {
			t.Fatal("outsider pick leaked into the feed")
		}
		if i > 0 && pick.CreatedAt.After(page.Picks[i-1].CreatedAt) {
			t.Fatal("feed not ordered newest first")
		}
	}

	second, err := feed.Get(ctx, me.ID, page.NextCursor)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Picks) != FeedPageSize {
		t.Fatalf("expected %d picks on page two, got %d", FeedPageSize, len(second.Picks))
	}
	if second.Picks[0].CreatedAt.After(page.Picks[len(page.Picks)-1].CreatedAt) {
		t.Fatal("page two overlaps page one")
	}

	t.Run("Invalid cursor", func(t *testing.T) {
		_, err := feed.Get(ctx, me.ID, "not-a-cursor")
		assertAppErrorCode(t, err, models.CodeInvalidRequest)
	})

	t.Run("No contacts still shows own picks", func(t *testing.T) {
		page, err := feed.Get(ctx, outsider.ID, "")
		if err != nil {
			t.Fatalf("feed: %v", err)
		}
		if len(page.Picks) != 1 {
			t.Fatalf("expected 1 pick, got %d", len(page.Picks))
		}
	})
}
