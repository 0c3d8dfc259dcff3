package main

import (
	"context"
	"log"
	"os"

	"github.com/ankit/oppgenie/internal/config"
	"github.com/ankit/oppgenie/internal/db"
	"github.com/ankit/oppgenie/internal/sources"
)

// Seeds the curated catalog into the opportunities table.
func main() {
	cfg, err := config.Load(os.Getenv("OPPGENIE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	opps, err := sources.NewCurated().Fetch(ctx, "")
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	written, err := db.NewSeedStore(pool).Seed(ctx, opps)
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	log.Printf("Seeded %d opportunities", written)
}
