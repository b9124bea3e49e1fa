// Package logging builds the slog loggers used across shotrouter and defines
// the standardized attribute keys (component, record_id, source_path, ...)
// that keep structured output greppable. Console and JSON handlers share the
// same level plumbing; tests use NewNop.
package logging
