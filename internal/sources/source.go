package sources

import (
	"context"

	"github.com/ankit/oppgenie/internal/models"
)

// Source is a provider-specific fetch-and-normalize adapter. A failed source
// must never take down the merged result: the aggregator treats any error as
// an empty contribution.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query string) ([]models.Opportunity, error)
}
