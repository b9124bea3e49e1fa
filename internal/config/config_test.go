package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shotrouter/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Watcher.DebounceMs != 400 {
		t.Fatalf("debounce default = %d, want 400", cfg.Watcher.DebounceMs)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7676" {
		t.Fatalf("api bind default = %s", cfg.Paths.APIBind)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("missing file should report exists=false")
	}
	if resolved != path {
		t.Fatalf("resolved = %s, want %s", resolved, path)
	}
	if cfg.Watcher.DebounceMs != 400 || len(cfg.Watcher.Extensions) == 0 {
		t.Fatalf("defaults not applied: %+v", cfg.Watcher)
	}
}

func TestLoadNormalizesValues(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "shots")
	path := filepath.Join(dir, "config.toml")

	content := `
[paths]
db_path = "` + filepath.Join(dir, "state", "db.sqlite") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[watcher]
debounce_ms = 250
extensions = ["PNG", "jpg", "png"]
fallback_ext = "jpeg"

[[sources]]
path = "` + srcDir + `"
enabled = true

[[sources]]
path = "` + srcDir + `"
enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Watcher.DebounceMs != 250 {
		t.Fatalf("debounce = %d, want 250", cfg.Watcher.DebounceMs)
	}
	if len(cfg.Watcher.Extensions) != 2 {
		t.Fatalf("extensions = %v, want deduped pair", cfg.Watcher.Extensions)
	}
	for _, ext := range cfg.Watcher.Extensions {
		if ext != strings.ToLower(ext) || !strings.HasPrefix(ext, ".") {
			t.Fatalf("extension not normalized: %q", ext)
		}
	}
	if cfg.Watcher.FallbackExt != ".jpeg" {
		t.Fatalf("fallback = %q, want .jpeg", cfg.Watcher.FallbackExt)
	}
	if len(cfg.Sources) != 1 {
		t.Fatalf("sources = %v, want duplicate collapsed", cfg.Sources)
	}
}

func TestLoadRejectsSettleBelowDebounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[watcher]
debounce_ms = 5000
settle_timeout_s = 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestExtensionAllowed(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cases := []struct {
		ext  string
		want bool
	}{
		{".png", true},
		{".PNG", true},
		{" .jpg ", true},
		{".txt", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := cfg.ExtensionAllowed(tc.ext); got != tc.want {
			t.Errorf("ExtensionAllowed(%q) = %v, want %v", tc.ext, got, tc.want)
		}
	}
}

func TestSourceDebounceFallsBack(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Watcher.DebounceMs = 300

	if got := cfg.SourceDebounce(config.Source{Path: "/a", DebounceMs: 150}); got != 150 {
		t.Fatalf("override = %d, want 150", got)
	}
	if got := cfg.SourceDebounce(config.Source{Path: "/a"}); got != 300 {
		t.Fatalf("fallback = %d, want 300", got)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error for existing file")
	}

	// The sample must itself load cleanly.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("Load sample: %v", err)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got, err := config.ExpandPath("~/captures")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "captures") {
		t.Fatalf("ExpandPath = %s", got)
	}
}
