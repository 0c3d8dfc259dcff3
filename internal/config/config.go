package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the startup configuration. Values come from an optional YAML
// file overlaid with OPPGENIE_* environment variables; neither hot-reloads.
type Config struct {
	Port         int      `koanf:"port"`
	DatabaseURL  string   `koanf:"database_url"`
	GeminiAPIKey string   `koanf:"gemini_api_key"`
	AdminEmail   string   `koanf:"admin_email"`
	FeedBaseURL  string   `koanf:"feed_base_url"`
	Location     string   `koanf:"location"`
	CORSOrigins  []string `koanf:"cors_origins"`
}

const envPrefix = "OPPGENIE_"

// Load reads path (skipped when empty or missing) and then the environment.
// OPPGENIE_DATABASE_URL maps to database_url, and so on.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	cfg := &Config{
		Port:        8080,
		CORSOrigins: []string{"http://localhost:3000"},
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
