package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Valid Config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		content := `
[credentials]
json_path = "svc.json"

[publish]
package_name = "com.example.app"
track = "beta"
artifact = "app.aab"
fresh_edit = true

[database]
path = "test.db"
max_open_conns = 2
max_idle_conns = 1
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Credentials.JSONPath != "svc.json" {
			t.Errorf("unexpected credential path %q", cfg.Credentials.JSONPath)
		}
		if cfg.Publish.PackageName != "com.example.app" {
			t.Errorf("unexpected package %q", cfg.Publish.PackageName)
		}
		if cfg.Publish.Track != "beta" {
			t.Errorf("unexpected track %q", cfg.Publish.Track)
		}
		if !cfg.Publish.FreshEdit {
			t.Error("expected fresh_edit to be true")
		}
		if cfg.Database.Path != "test.db" {
			t.Errorf("unexpected database path %q", cfg.Database.Path)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
		if err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Malformed TOML", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte("[publish\ntrack="), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadConfig(path)
		if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
			t.Errorf("expected parse error, got %v", err)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Publish.Track != "internal" {
		t.Errorf("expected default track 'internal', got %q", cfg.Publish.Track)
	}
	if cfg.Database.Path == "" {
		t.Error("expected a default database path")
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("Creates File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("created config must parse: %v", err)
		}
		if cfg.Publish.Track != "internal" {
			t.Errorf("unexpected default track %q", cfg.Publish.Track)
		}
	})

	t.Run("Refuses Overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("# existing"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error for existing file")
		}
	})
}
