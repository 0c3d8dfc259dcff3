package aggregate

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/ankit/oppgenie/internal/models"
	"github.com/ankit/oppgenie/internal/sources"
)

// MaxTrending caps the number of entries Trending returns.
const MaxTrending = 20

// Aggregator fans a query out to every registered source concurrently and
// merges the results. A failing source is logged and skipped so one broken
// provider never blanks the whole feed.
type Aggregator struct {
	sources  []sources.Source
	location string
}

func New(location string, srcs ...sources.Source) *Aggregator {
	return &Aggregator{sources: srcs, location: location}
}

// FetchAll queries every source in parallel and concatenates the results in
// source registration order.
func (a *Aggregator) FetchAll(ctx context.Context, query string) []models.Opportunity {
	results := make([][]models.Opportunity, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()
			opps, err := src.Fetch(ctx, query)
			if err != nil {
				log.Printf("aggregate: source %s failed: %v", src.Name(), err)
				return
			}
			results[i] = opps
		}(i, src)
	}
	wg.Wait()

	var merged []models.Opportunity
	for _, batch := range results {
		for _, opp := range batch {
			if a.matchesLocation(opp) {
				merged = append(merged, opp)
			}
		}
	}
	return merged
}

// matchesLocation keeps remote and location-agnostic entries regardless of
// the configured preference, and otherwise requires a substring match.
func (a *Aggregator) matchesLocation(o models.Opportunity) bool {
	if a.location == "" || o.Location == "" {
		return true
	}
	loc := strings.ToLower(o.Location)
	if loc == "remote" {
		return true
	}
	return strings.Contains(loc, strings.ToLower(a.location))
}

// Trending returns entries flagged as trending, or tagged "trending" by
// their source, capped at MaxTrending.
func (a *Aggregator) Trending(ctx context.Context) []models.Opportunity {
	all := a.FetchAll(ctx, "")

	trending := make([]models.Opportunity, 0, MaxTrending)
	for _, opp := range all {
		if !isTrending(opp) {
			continue
		}
		trending = append(trending, opp)
		if len(trending) == MaxTrending {
			break
		}
	}
	return trending
}

func isTrending(o models.Opportunity) bool {
	if o.Trending {
		return true
	}
	// The tag signal is only meaningful on GitHub records; other sources set
	// the flag explicitly.
	if o.Source != "GitHub" {
		return false
	}
	for _, tag := range o.Tags {
		if strings.EqualFold(tag, "trending") {
			return true
		}
	}
	return false
}

// Search runs the query through every source and filters the merged results
// to entries whose title, description, organization, or tags contain the
// query, case-insensitively.
func (a *Aggregator) Search(ctx context.Context, query string) []models.Opportunity {
	all := a.FetchAll(ctx, query)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	matched := make([]models.Opportunity, 0, len(all))
	for _, opp := range all {
		if matchesQuery(opp, q) {
			matched = append(matched, opp)
		}
	}
	return matched
}

func matchesQuery(o models.Opportunity, q string) bool {
	if strings.Contains(strings.ToLower(o.Title), q) ||
		strings.Contains(strings.ToLower(o.Description), q) ||
		strings.Contains(strings.ToLower(o.Organization), q) {
		return true
	}
	for _, tag := range o.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// ByCategory returns entries whose category equals the given one exactly.
func (a *Aggregator) ByCategory(ctx context.Context, category string) []models.Opportunity {
	all := a.FetchAll(ctx, "")

	matched := make([]models.Opportunity, 0, len(all))
	for _, opp := range all {
		if opp.Category == category {
			matched = append(matched, opp)
		}
	}
	return matched
}

// Get looks an opportunity up by id across all sources. The second return
// reports whether it was found.
func (a *Aggregator) Get(ctx context.Context, id string) (models.Opportunity, bool) {
	for _, opp := range a.FetchAll(ctx, "") {
		if opp.ID == id {
			return opp, true
		}
	}
	return models.Opportunity{}, false
}
