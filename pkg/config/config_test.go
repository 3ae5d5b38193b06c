package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/reftree/pkg/connector"
	"github.com/matzehuels/reftree/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	if cfg.Layout.MinColumns != 3 {
		t.Errorf("MinColumns = %d, want 3", cfg.Layout.MinColumns)
	}
	if cfg.Layout.ConnectorOffset != 25 {
		t.Errorf("ConnectorOffset = %v, want 25", cfg.Layout.ConnectorOffset)
	}
	if diff := cmp.Diff(connector.DefaultStyle(), cfg.ConnectorStyle()); diff != "" {
		t.Errorf("ConnectorStyle mismatch (-want +got):\n%s", diff)
	}
	if cfg.Viewport.OverlayMargin != 40 {
		t.Errorf("OverlayMargin = %v, want 40", cfg.Viewport.OverlayMargin)
	}
	if ttl, err := cfg.CacheTTL(); err != nil || ttl != 7*24*time.Hour {
		t.Errorf("CacheTTL() = %v, %v", ttl, err)
	}
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if got := Dir(); got != "/tmp/test-xdg/reftree" {
		t.Errorf("Dir() = %q", got)
	}
	if got := DefaultPath(); got != "/tmp/test-xdg/reftree/config.toml" {
		t.Errorf("DefaultPath() = %q", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	if got, want := Dir(), filepath.Join(home, ".config", "reftree"); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Layout.MinColumns = 5
	cfg.Metrics.CardWidth = 200
	cfg.Style.Stroke = "#ff0000"
	cfg.Cache.Backend = "redis"
	cfg.Mongo.Database = "app"

	if err := Save(cfg, ""); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPartialOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[layout]
min_columns = 4

[metrics]
row_gap = 90

[style.theme]
background = "#000000"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Default()
	want.Layout.MinColumns = 4
	want.Metrics.RowGap = 90
	want.Style.Theme.Background = "#000000"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Syntax", "[layout\nmin_columns = "},
		{"ZeroColumns", "[layout]\nmin_columns = 0"},
		{"NegativeGap", "[metrics]\ncol_gap = -1"},
		{"Backend", "[cache]\nbackend = \"memcached\""},
		{"TTL", "[cache]\nttl = \"forever\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}
