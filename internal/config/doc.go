// Package config loads, normalizes, and validates shotrouter configuration.
//
// Configuration is TOML with sections for paths, watcher stabilization
// tuning, watched sources, notifications, and logging. Load applies defaults,
// expands ~ and relative paths to absolute ones, and validates the result so
// downstream packages never re-check path or range invariants.
package config
