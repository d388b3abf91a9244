package seed

import (
	"testing"

	"youbet/internal/database"
	"youbet/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRun(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	opts := Options{NumUsers: 8, NumEvents: 5, NumPicks: 20}
	if err := Run(db, opts); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 8 {
		t.Fatalf("expected 8 users, got %d", userCount)
	}

	var eventCount int64
	db.Model(&models.Event{}).Count(&eventCount)
	if eventCount != 5 {
		t.Fatalf("expected 5 events, got %d", eventCount)
	}

	var pickCount int64
	db.Model(&models.Pick{}).Count(&pickCount)
	if pickCount != 20 {
		t.Fatalf("expected 20 picks, got %d", pickCount)
	}

	// Every seeded edge must be stored in canonical order.
	var contacts []models.Contact
	if err := db.Find(&contacts).Error; err != nil {
		t.Fatalf("load contacts: %v", err)
	}
	if len(contacts) == 0 {
		t.Fatal("expected some contact edges")
	}
	for _, c := range contacts {
		if c.UserID >= c.ContactID {
			t.Fatalf("edge not canonical: (%d, %d)", c.UserID, c.ContactID)
		}
	}

	// Settled picks must carry a consistent payout.
	var picks []models.Pick
	if err := db.Find(&picks).Error; err != nil {
		t.Fatalf("load picks: %v", err)
	}
	for _, p := range picks {
		switch p.Status {
		case models.PickStatusLost:
			if p.Payout != 0 {
				t.Fatalf("lost pick %d has payout %v", p.ID, p.Payout)
			}
		case models.PickStatusPush:
			if p.Payout != p.Stake {
				t.Fatalf("push pick %d has payout %v, stake %v", p.ID, p.Payout, p.Stake)
			}
		}
	}

	t.Run("CleanResets", func(t *testing.T) {
		if err := Run(db, Options{NumUsers: 3, NumEvents: 2, NumPicks: 4, ShouldClean: true}); err != nil {
			t.Fatalf("reseed: %v", err)
		}
		var count int64
		db.Model(&models.User{}).Count(&count)
		if count != 3 {
			t.Fatalf("expected 3 users after clean, got %d", count)
		}
	})
}
