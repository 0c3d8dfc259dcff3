package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ankit/oppgenie/internal/aggregate"
	"github.com/ankit/oppgenie/internal/config"
	"github.com/ankit/oppgenie/internal/sources"
)

// Prints the current trending feed, as the API would serve it.
func main() {
	cfg, err := config.Load(os.Getenv("OPPGENIE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logos := sources.NewLogoResolver()
	agg := aggregate.New(cfg.Location,
		sources.NewGitHub(),
		sources.NewCurated(),
		sources.NewJobsFeed(cfg.FeedBaseURL, cfg.Location, logos),
		sources.NewInternshipsFeed(cfg.FeedBaseURL, cfg.Location, logos),
		sources.NewVolunteerFeed(cfg.FeedBaseURL, cfg.Location, logos),
	)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Title", "Organization", "Category", "Deadline", "Source"})

	for _, opp := range agg.Trending(ctx) {
		t.AppendRow(table.Row{opp.ID, opp.Title, opp.Organization, opp.Category, opp.Deadline, opp.Source})
	}
	t.Render()
}
