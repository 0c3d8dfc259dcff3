package main

import (
	"context"
	"log"
	"os"

	"github.com/ankit/oppgenie/internal/api"
	"github.com/ankit/oppgenie/internal/config"
	"github.com/ankit/oppgenie/internal/db"
)

func main() {
	cfg, err := config.Load(os.Getenv("OPPGENIE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	srv := api.NewServer(pool, cfg)
	log.Printf("Server starting on port %d...", cfg.Port)
	if err := srv.Start(cfg.Port); err != nil {
		log.Fatal(err)
	}
}
