package sources

import (
	"context"
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ankit/oppgenie/internal/models"
)

//go:embed config/catalog.yaml
var catalogYAML embed.FS

type catalogFile struct {
	Opportunities []models.Opportunity `yaml:"opportunities"`
}

// Curated serves the hand-maintained catalog embedded in the binary. It makes
// no network calls and is the fallback guaranteeing a non-empty aggregate
// even when every live source is down.
type Curated struct {
	once    sync.Once
	entries []models.Opportunity
	loadErr error
}

func NewCurated() *Curated { return &Curated{} }

func (c *Curated) Name() string { return "Custom" }

func (c *Curated) Fetch(ctx context.Context, query string) ([]models.Opportunity, error) {
	c.once.Do(c.load)
	if c.loadErr != nil {
		return nil, c.loadErr
	}

	out := make([]models.Opportunity, len(c.entries))
	copy(out, c.entries)
	return out, nil
}

func (c *Curated) load() {
	data, err := catalogYAML.ReadFile("config/catalog.yaml")
	if err != nil {
		c.loadErr = fmt.Errorf("failed to read embedded catalog: %w", err)
		return
	}

	var parsed catalogFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		c.loadErr = fmt.Errorf("failed to parse catalog: %w", err)
		return
	}

	for i := range parsed.Opportunities {
		if parsed.Opportunities[i].Source == "" {
			parsed.Opportunities[i].Source = c.Name()
		}
		Normalize(&parsed.Opportunities[i])
	}
	c.entries = parsed.Opportunities
}
