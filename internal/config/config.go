package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file locations and the API bind address.
type Paths struct {
	// DBPath is the SQLite database location. Empty selects an in-memory
	// store that does not survive restarts.
	DBPath  string `toml:"db_path"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Watcher contains stabilization and filtering settings shared by all
// watched directories unless a source overrides them.
type Watcher struct {
	DebounceMs     int      `toml:"debounce_ms"`
	PollIntervalMs int      `toml:"poll_interval_ms"`
	SettleTimeoutS int      `toml:"settle_timeout_s"`
	Extensions     []string `toml:"extensions"`
	FallbackExt    string   `toml:"fallback_ext"`
}

// Source describes one watched directory.
type Source struct {
	Path       string `toml:"path"`
	Enabled    bool   `toml:"enabled"`
	DebounceMs int    `toml:"debounce_ms"`
}

// Notifications contains event queue settings.
type Notifications struct {
	BufferSize int `toml:"buffer_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for shotrouter.
//
// Configuration sections by subsystem:
//   - Paths: database location, log directory, API bind address
//   - Watcher: stabilization debounce, poll cadence, extension allow-list
//   - Sources: watched directories (empty list probes platform defaults)
//   - Notifications: bounded event queue sizing
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Watcher       Watcher       `toml:"watcher"`
	Sources       []Source      `toml:"sources"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shotrouter/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When no file exists the
// defaults are returned; exists reports whether a file was read.
func Load(path string) (cfg *Config, resolvedPath string, exists bool, err error) {
	value := Default()

	resolvedPath, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, openErr := os.Open(resolvedPath)
		if openErr != nil {
			return nil, "", false, fmt.Errorf("open config: %w", openErr)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if decodeErr := decoder.Decode(&value); decodeErr != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", decodeErr)
		}
	}

	if err = value.normalize(); err != nil {
		return nil, "", false, err
	}
	if err = value.Validate(); err != nil {
		return nil, "", false, err
	}

	return &value, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		if env := strings.TrimSpace(os.Getenv("SHOTROUTER_CONFIG")); env != "" {
			path = env
		}
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path, creating
// parent directories as needed. It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	if c.Paths.LogDir != "" {
		if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Paths.LogDir, err)
		}
	}
	if c.Paths.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(c.Paths.DBPath), 0o755); err != nil {
			return fmt.Errorf("create database directory %q: %w", filepath.Dir(c.Paths.DBPath), err)
		}
	}
	return nil
}

// SourceDebounce returns the effective debounce for a source, falling back to
// the global watcher debounce when the source does not set one.
func (c *Config) SourceDebounce(src Source) int {
	if src.DebounceMs > 0 {
		return src.DebounceMs
	}
	return c.Watcher.DebounceMs
}

// ExtensionAllowed reports whether a filename extension (including the
// leading dot, any case) passes the watcher allow-list.
func (c *Config) ExtensionAllowed(ext string) bool {
	normalized := strings.ToLower(strings.TrimSpace(ext))
	for _, allowed := range c.Watcher.Extensions {
		if normalized == allowed {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
