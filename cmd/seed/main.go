// Command seed populates the database with the demo marketplace.
package main

import (
	"context"
	"flag"
	"log"

	"xhubsell/internal/config"
	"xhubsell/internal/database"
	"xhubsell/internal/seed"
)

func main() {
	clean := flag.Bool("clean", false, "Truncate marketplace tables before seeding")
	extra := flag.Int("sellers", 20, "Number of fake sellers to add after the demo accounts")
	fast := flag.Bool("fast", false, "Hash demo passwords at minimum bcrypt cost")
	randSeed := flag.Int64("rand-seed", 0, "Seed for reproducible fake data (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() && *clean {
		log.Fatal("refusing to clean a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}

	report, err := seed.NewSeeder(db, seed.Options{
		Clean:        *clean,
		ExtraSellers: *extra,
		SkipBcrypt:   *fast,
		RandSeed:     *randSeed,
	}).Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d demo sellers, %d reviews, %d fake sellers",
		report.Users, report.Sellers, report.Reviews, report.ExtraSellers)
	log.Printf("All demo accounts use the password: %s", seed.DemoPassword)
}
