// Command seed populates the database with fake development data.
package main

import (
	"flag"
	"log"

	"youbet/internal/config"
	"youbet/internal/database"
	"youbet/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "number of users to create")
	numEvents := flag.Int("events", 40, "number of events to create")
	numPicks := flag.Int("picks", 150, "number of picks to create")
	clean := flag.Bool("clean", false, "delete existing rows first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:    *numUsers,
		NumEvents:   *numEvents,
		NumPicks:    *numPicks,
		ShouldClean: *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
