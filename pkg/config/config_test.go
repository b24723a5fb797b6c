package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed for missing file: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8787" {
		t.Errorf("Unexpected default base URL: %s", cfg.API.BaseURL)
	}
	if cfg.Privacy.RetentionDays != 365 {
		t.Errorf("Unexpected default retention: %d", cfg.Privacy.RetentionDays)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://dreams.example
  timeout_seconds: 30
mirror:
  url: https://backup.example
  api_key: from-file
privacy:
  retention_days: 90
db:
  path: /tmp/dreams.db
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Writing config fixture failed: %v", err)
	}

	t.Setenv(EnvMirrorKey, "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://dreams.example" || cfg.API.TimeoutSeconds != 30 {
		t.Errorf("File values not loaded: %+v", cfg.API)
	}
	if cfg.Mirror.APIKey != "from-env" {
		t.Errorf("Env override not applied: %q", cfg.Mirror.APIKey)
	}
	if cfg.Mirror.URL != "https://backup.example" {
		t.Errorf("File mirror URL lost: %q", cfg.Mirror.URL)
	}
	if cfg.DB.Path != "/tmp/dreams.db" {
		t.Errorf("DB path not loaded: %q", cfg.DB.Path)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config must validate: %v", err)
	}

	bad := Default()
	bad.API.BaseURL = ""
	if err := bad.Validate(); err == nil {
		t.Errorf("Expected error for empty base URL")
	}

	bad = Default()
	bad.Privacy.RetentionDays = 0
	if err := bad.Validate(); err == nil {
		t.Errorf("Expected error for zero retention")
	}

	bad = Default()
	bad.Mirror.URL = "https://backup.example"
	if err := bad.Validate(); err == nil {
		t.Errorf("Expected error for mirror URL without key")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("api: ["), 0o600); err != nil {
		t.Fatalf("Writing fixture failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Errorf("Expected error for malformed YAML")
	}
}
