package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ankit/oppgenie/internal/models"
)

// SeedStore bulk-writes curated catalog records. It is write-only from the
// application's point of view: the aggregator serves listings live from the
// source adapters and never reads this table back.
type SeedStore struct {
	pool *pgxpool.Pool
}

func NewSeedStore(pool *pgxpool.Pool) *SeedStore {
	return &SeedStore{pool: pool}
}

// Seed upserts the given records in one batch and returns how many were
// written. Re-seeding with the same catalog is idempotent.
func (s *SeedStore) Seed(ctx context.Context, opps []models.Opportunity) (int64, error) {
	batch := &pgx.Batch{}
	for _, o := range opps {
		batch.Queue(`
			INSERT INTO opportunities
				(id, title, organization, type, deadline, eligibility, link,
				 description, category, source, location, tags, logo, trending)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				organization = EXCLUDED.organization,
				type = EXCLUDED.type,
				deadline = EXCLUDED.deadline,
				eligibility = EXCLUDED.eligibility,
				link = EXCLUDED.link,
				description = EXCLUDED.description,
				category = EXCLUDED.category,
				source = EXCLUDED.source,
				location = EXCLUDED.location,
				tags = EXCLUDED.tags,
				logo = EXCLUDED.logo,
				trending = EXCLUDED.trending,
				seeded_at = NOW()
		`, o.ID, o.Title, o.Organization, o.Type, o.Deadline, o.Eligibility,
			o.Link, o.Description, o.Category, o.Source, o.Location, o.Tags,
			o.Logo, o.Trending)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	var written int64
	for range opps {
		tag, err := results.Exec()
		if err != nil {
			return written, fmt.Errorf("seed write failed: %w", err)
		}
		written += tag.RowsAffected()
	}
	return written, nil
}

// Count reports the seeded record total for admin tooling.
func (s *SeedStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM opportunities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("seed count failed: %w", err)
	}
	return n, nil
}
