package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if len(cfg.CORSOrigins) == 0 {
		t.Error("expected a default CORS origin")
	}
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("port: 9000\nadmin_email: admin@example.com\nfeed_base_url: https://feeds.example\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPPGENIE_ADMIN_EMAIL", "root@example.com")
	t.Setenv("OPPGENIE_GEMINI_API_KEY", "k-123")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Port)
	}
	// Environment wins over the file.
	if cfg.AdminEmail != "root@example.com" {
		t.Errorf("admin email = %q", cfg.AdminEmail)
	}
	if cfg.GeminiAPIKey != "k-123" {
		t.Errorf("api key = %q", cfg.GeminiAPIKey)
	}
	if cfg.FeedBaseURL != "https://feeds.example" {
		t.Errorf("feed base url = %q", cfg.FeedBaseURL)
	}
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err != nil {
		t.Fatalf("load: %v", err)
	}
}
