package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWatcher(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if c.Notifications.BufferSize <= 0 {
		return errors.New("notifications.buffer_size must be positive")
	}
	return nil
}

func (c *Config) validateWatcher() error {
	if c.Watcher.DebounceMs <= 0 {
		return errors.New("watcher.debounce_ms must be positive")
	}
	if c.Watcher.PollIntervalMs <= 0 {
		return errors.New("watcher.poll_interval_ms must be positive")
	}
	if c.Watcher.SettleTimeoutS <= 0 {
		return errors.New("watcher.settle_timeout_s must be positive")
	}
	if c.Watcher.SettleTimeoutS*1000 <= c.Watcher.DebounceMs {
		return errors.New("watcher.settle_timeout_s must exceed watcher.debounce_ms")
	}
	if len(c.Watcher.Extensions) == 0 {
		return errors.New("watcher.extensions must not be empty")
	}
	return nil
}

func (c *Config) validateSources() error {
	for i, src := range c.Sources {
		if src.Path == "" {
			return fmt.Errorf("sources[%d].path must be set", i)
		}
	}
	return nil
}
