package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"shotrouter/internal/config"
	"shotrouter/internal/logging"
	"shotrouter/internal/notifications"
	"shotrouter/internal/store"
)

// ActiveWatch describes one managed watcher for status surfaces.
type ActiveWatch struct {
	Path       string `json:"path"`
	DebounceMs int    `json:"debounce_ms"`
	Running    bool   `json:"running"`
}

// Manager owns the set of directory watchers. Paths are canonicalized before
// lookup so two spellings of one directory share a single watcher.
type Manager struct {
	cfg      *config.Config
	store    *store.Store
	notifier notifications.Service
	resolver RouteResolver
	logger   *slog.Logger
	base     *slog.Logger

	mu       sync.Mutex
	watchers map[string]*DirWatcher
}

// NewManager builds an empty watch manager.
func NewManager(cfg *config.Config, st *store.Store, notifier notifications.Service, resolver RouteResolver, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    st,
		notifier: notifier,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "watchmanager"),
		base:     logger,
		watchers: make(map[string]*DirWatcher),
	}
}

// CanonicalPath expands ~ and relative segments and resolves symlinks so
// path identity matches directory identity. Symlink resolution is best
// effort; a dangling target keeps the expanded spelling.
func CanonicalPath(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(expanded); err == nil {
		return resolved, nil
	}
	return expanded, nil
}

// StartFor begins watching a directory with the given debounce. Starting an
// already-watched directory is a no-op. A non-positive debounceMs takes the
// global watcher default.
func (m *Manager) StartFor(ctx context.Context, path string, debounceMs int) error {
	canonical, err := CanonicalPath(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return fmt.Errorf("watch path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path %s is not a directory", canonical)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.watchers[canonical]; ok {
		if existing.Running() {
			return nil
		}
		// Dead watcher, e.g. the subscription failed mid-run. Replace it.
		existing.Stop()
		delete(m.watchers, canonical)
	}

	w := NewDirWatcher(canonical, debounceMs, m.cfg, m.store, m.notifier, m.resolver, m.base)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watch %s: %w", canonical, err)
	}
	m.watchers[canonical] = w
	return nil
}

// StopFor stops the watcher for a directory, reporting whether one existed.
func (m *Manager) StopFor(path string) (bool, error) {
	canonical, err := CanonicalPath(path)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	w, ok := m.watchers[canonical]
	if ok {
		delete(m.watchers, canonical)
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	w.Stop()
	m.logger.Info("stopped watching directory", logging.String(logging.FieldWatchPath, canonical))
	return true, nil
}

// StopAll stops every managed watcher.
func (m *Manager) StopAll() {
	m.mu.Lock()
	watchers := make([]*DirWatcher, 0, len(m.watchers))
	for path, w := range m.watchers {
		watchers = append(watchers, w)
		delete(m.watchers, path)
	}
	m.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}
}

// List returns the managed watchers sorted by path, including ones whose
// event loop has died since starting.
func (m *Manager) List() []ActiveWatch {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ActiveWatch, 0, len(m.watchers))
	for _, w := range m.watchers {
		out = append(out, ActiveWatch{
			Path:       w.Path(),
			DebounceMs: w.DebounceMs(),
			Running:    w.Running(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
