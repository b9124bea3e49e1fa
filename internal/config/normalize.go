package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSources(); err != nil {
		return err
	}
	c.normalizeWatcher()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.DBPath = strings.TrimSpace(c.Paths.DBPath)
	if c.Paths.DBPath != "" {
		if c.Paths.DBPath, err = expandPath(c.Paths.DBPath); err != nil {
			return fmt.Errorf("paths.db_path: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir()
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeSources() error {
	normalized := make([]Source, 0, len(c.Sources))
	seen := make(map[string]struct{}, len(c.Sources))
	for i, src := range c.Sources {
		trimmed := strings.TrimSpace(src.Path)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("sources[%d].path: %w", i, err)
		}
		if _, dup := seen[expanded]; dup {
			continue
		}
		seen[expanded] = struct{}{}
		src.Path = expanded
		if src.DebounceMs < 0 {
			src.DebounceMs = 0
		}
		normalized = append(normalized, src)
	}
	c.Sources = normalized
	return nil
}

func (c *Config) normalizeWatcher() {
	if c.Watcher.DebounceMs <= 0 {
		c.Watcher.DebounceMs = defaultDebounceMs
	}
	if c.Watcher.PollIntervalMs <= 0 {
		c.Watcher.PollIntervalMs = defaultPollIntervalMs
	}
	if c.Watcher.SettleTimeoutS <= 0 {
		c.Watcher.SettleTimeoutS = defaultSettleTimeoutS
	}

	exts := make([]string, 0, len(c.Watcher.Extensions))
	seen := make(map[string]struct{}, len(c.Watcher.Extensions))
	for _, ext := range c.Watcher.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = defaultExtensions()
	}
	c.Watcher.Extensions = exts

	fallback := strings.ToLower(strings.TrimSpace(c.Watcher.FallbackExt))
	if fallback == "" {
		fallback = defaultFallbackExt
	} else if !strings.HasPrefix(fallback, ".") {
		fallback = "." + fallback
	}
	c.Watcher.FallbackExt = fallback
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.BufferSize <= 0 {
		c.Notifications.BufferSize = defaultEventBuffer
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
