// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"youbet/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumEvents   int
	NumPicks    int
	ShouldClean bool
}

var sports = map[string][]string{
	"basketball": {"NBA", "NCAA"},
	"football":   {"NFL"},
	"baseball":   {"MLB"},
	"hockey":     {"NHL"},
	"soccer":     {"EPL", "MLS", "La Liga"},
}

var selections = []string{
	"%s ML", "%s -3.5", "%s +7", "Over 44.5", "Under 220.5", "%s -1.5 (run line)",
}

// Run populates the database with fake users, events, contacts, and picks.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 25
	}
	if opts.NumEvents <= 0 {
		opts.NumEvents = 40
	}
	if opts.NumPicks <= 0 {
		opts.NumPicks = 150
	}

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return err
		}
	}

	users, err := seedUsers(db, opts.NumUsers)
	if err != nil {
		return err
	}
	events, err := seedEvents(db, opts.NumEvents)
	if err != nil {
		return err
	}
	if err := seedContacts(db, users); err != nil {
		return err
	}
	if err := seedPicks(db, users, events, opts.NumPicks); err != nil {
		return err
	}

	log.Printf("Seeded %d users, %d events, %d picks", len(users), len(events), opts.NumPicks)
	return nil
}

func clean(db *gorm.DB) error {
	tables := []interface{}{
		&models.Comment{}, &models.Reaction{}, &models.Pick{},
		&models.Notification{}, &models.Contact{}, &models.ContactRequest{},
		&models.Event{}, &models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return fmt.Errorf("clean table: %w", err)
		}
	}
	return nil
}

func seedUsers(db *gorm.DB, count int) ([]models.User, error) {
	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			Phone:         fmt.Sprintf("+1555%07d", i),
			Handle:        fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Name:          gofakeit.Name(),
			Email:         gofakeit.Email(),
			Bio:           gofakeit.Sentence(10),
			PhoneVerified: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func seedEvents(db *gorm.DB, count int) ([]models.Event, error) {
	events := make([]models.Event, 0, count)
	sportNames := make([]string, 0, len(sports))
	for s := range sports {
		sportNames = append(sportNames, s)
	}
	for i := 0; i < count; i++ {
		sport := sportNames[rand.Intn(len(sportNames))]
		leagues := sports[sport]
		event := models.Event{
			Sport:     sport,
			League:    leagues[rand.Intn(len(leagues))],
			HomeTeam:  gofakeit.City() + " " + gofakeit.PetName(),
			AwayTeam:  gofakeit.City() + " " + gofakeit.PetName(),
			StartTime: time.Now().Add(time.Duration(rand.Intn(14*24)) * time.Hour),
			Status:    models.EventStatusScheduled,
		}
		if err := db.Create(&event).Error; err != nil {
			return nil, fmt.Errorf("seed event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

// seedContacts links each user to a handful of others.
func seedContacts(db *gorm.DB, users []models.User) error {
	for i := range users {
		for n := 0; n < 4; n++ {
			j := rand.Intn(len(users))
			if j == i {
				continue
			}
			lo, hi := models.OrderPair(users[i].ID, users[j].ID)
			contact := models.Contact{UserID: lo, ContactID: hi}
			// Duplicate pairs hit the unique index; skip them.
			if err := db.Create(&contact).Error; err != nil {
				continue
			}
		}
	}
	return nil
}

func seedPicks(db *gorm.DB, users []models.User, events []models.Event, count int) error {
	statuses := []models.PickStatus{
		models.PickStatusPending, models.PickStatusPending,
		models.PickStatusWon, models.PickStatusLost, models.PickStatusPush,
	}
	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		event := events[rand.Intn(len(events))]
		sel := selections[rand.Intn(len(selections))]
		selection := sel
		if strings.Contains(sel, "%s") {
			selection = fmt.Sprintf(sel, event.HomeTeam)
		}
		stake := float64(rand.Intn(19)+1) * 10
		odds := 1.5 + rand.Float64()*2

		pick := models.Pick{
			UserID:    user.ID,
			EventID:   &event.ID,
			Type:      models.PickTypePrediction,
			Status:    statuses[rand.Intn(len(statuses))],
			Selection: selection,
			Odds:      odds,
			Stake:     stake,
			Caption:   gofakeit.HipsterSentence(8),
			CreatedAt: time.Now().Add(-time.Duration(rand.Intn(7*24)) * time.Hour),
		}
		switch pick.Status {
		case models.PickStatusWon:
			pick.Payout = stake * odds
		case models.PickStatusPush:
			pick.Payout = stake
		}
		if err := db.Create(&pick).Error; err != nil {
			return fmt.Errorf("seed pick: %w", err)
		}
	}
	return nil
}
