package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"shotrouter/internal/config"
	"shotrouter/internal/logging"
	"shotrouter/internal/notifications"
	"shotrouter/internal/router"
	"shotrouter/internal/store"
	"shotrouter/internal/watcher"
)

// Daemon wires the store, notification hub, router, watch manager, and API
// server into a single lifecycle and enforces single-instance execution via
// a lock file.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	hub     *notifications.Hub
	router  *router.Router
	manager *watcher.Manager

	logPath  string
	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DBPath       string
	LockFilePath string
	Sources      []watcher.ActiveWatch
	Counts       map[store.Status]int
}

// New constructs a daemon with initialized dependencies. The API server is
// only created when an api_bind address is configured.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	hub := notifications.NewHub(cfg.Notifications.BufferSize, logger)
	rt := router.New(cfg, st, hub, logger)
	mgr := watcher.NewManager(cfg, st, hub, rt, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "shotrouterd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		hub:      hub,
		router:   rt,
		manager:  mgr,
		logPath:  filepath.Join(cfg.Paths.LogDir, "shotrouter.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock, begins watching the configured sources,
// and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another shotrouter daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.startSources(d.ctx)

	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			d.manager.StopAll()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			_ = d.lock.Unlock()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("shotrouter daemon started", logging.String("lock", d.lockPath))
	return nil
}

// startSources begins watching the configured sources, or probes the
// platform's usual screenshot directories when none are configured. A source
// that cannot be watched is reported and skipped; the daemon stays up.
func (d *Daemon) startSources(ctx context.Context) {
	if len(d.cfg.Sources) == 0 {
		for _, dir := range config.DefaultSourceCandidates() {
			if err := d.manager.StartFor(ctx, dir, 0); err != nil {
				logging.WarnWithContext(d.logger, "skipping default source", "source_start_failed",
					logging.String(logging.FieldWatchPath, dir),
					logging.Error(err),
				)
			}
		}
		return
	}

	for _, src := range d.cfg.Sources {
		if !src.Enabled {
			continue
		}
		if err := d.manager.StartFor(ctx, src.Path, d.cfg.SourceDebounce(src)); err != nil {
			logging.WarnWithContext(d.logger, "skipping configured source", "source_start_failed",
				logging.String(logging.FieldWatchPath, src.Path),
				logging.String(logging.FieldImpact, "screenshots in this directory are not ingested"),
				logging.String(logging.FieldErrorHint, "check that the directory exists and is readable"),
				logging.Error(err),
			)
		}
	}
}

// Stop stops watchers and the API server and releases the daemon lock. The
// notification hub stays open so a restarted daemon keeps publishing; Close
// shuts it down.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.manager.StopAll()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
		)
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("shotrouter daemon stopped")
}

// Close releases all resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.hub != nil {
		d.hub.Close()
	}
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// WatchSource begins watching a directory at runtime. The watcher is bound
// to the daemon lifecycle, not the caller's request.
func (d *Daemon) WatchSource(path string, debounceMs int) error {
	ctx := d.ctx
	if ctx == nil {
		return errors.New("daemon is not running")
	}
	return d.manager.StartFor(ctx, path, debounceMs)
}

// UnwatchSource stops watching a directory, reporting whether one existed.
func (d *Daemon) UnwatchSource(path string) (bool, error) {
	return d.manager.StopFor(path)
}

// Store returns the record store.
func (d *Daemon) Store() *store.Store { return d.store }

// Hub returns the notification hub.
func (d *Daemon) Hub() *notifications.Hub { return d.hub }

// Router returns the routing engine.
func (d *Daemon) Router() *router.Router { return d.router }

// Sources returns the managed watchers.
func (d *Daemon) Sources() []watcher.ActiveWatch { return d.manager.List() }

// APIAddr returns the bound API listener address, empty when the API server
// is not running.
func (d *Daemon) APIAddr() string { return d.api.addr() }

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string { return d.logPath }

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	counts, err := d.store.Stats(ctx)
	if err != nil {
		logging.WarnWithContext(d.logger, "failed to load record stats", "stats_failed", logging.Error(err))
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DBPath:       d.store.Path(),
		LockFilePath: d.lockPath,
		Sources:      d.manager.List(),
		Counts:       counts,
	}
}
