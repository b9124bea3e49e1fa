package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"shotrouter/internal/config"
	"shotrouter/internal/logging"
	"shotrouter/internal/notifications"
	"shotrouter/internal/store"
)

// RouteResolver moves a freshly ingested record to wherever the routing
// rules for its source directory point. An empty destination with a nil
// error means no rule matched and the record stays in the inbox.
type RouteResolver interface {
	ResolveAndMove(ctx context.Context, recordID, sourceDir string) (string, error)
}

// DirWatcher ingests screenshots appearing in a single directory. Each new
// file is settled, claimed, recorded, announced, and handed to the resolver
// on its own goroutine so a slow write never blocks the event loop.
type DirWatcher struct {
	path     string
	debounce time.Duration
	cfg      *config.Config
	store    *store.Store
	notifier notifications.Service
	resolver RouteResolver
	logger   *slog.Logger

	mu      sync.Mutex
	fw      *fsnotify.Watcher
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewDirWatcher builds a watcher for one directory. A non-positive
// debounceMs falls back to the global watcher debounce.
func NewDirWatcher(path string, debounceMs int, cfg *config.Config, st *store.Store, notifier notifications.Service, resolver RouteResolver, logger *slog.Logger) *DirWatcher {
	if debounceMs <= 0 {
		debounceMs = cfg.Watcher.DebounceMs
	}
	if notifier == nil {
		notifier = notifications.NewNop()
	}
	return &DirWatcher{
		path:     path,
		debounce: time.Duration(debounceMs) * time.Millisecond,
		cfg:      cfg,
		store:    st,
		notifier: notifier,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "watcher"),
	}
}

// Path returns the watched directory.
func (w *DirWatcher) Path() string { return w.path }

// DebounceMs returns the effective debounce in milliseconds.
func (w *DirWatcher) DebounceMs() int { return int(w.debounce / time.Millisecond) }

// Running reports whether the event loop is alive.
func (w *DirWatcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start subscribes to filesystem events for the directory and launches the
// event loop. Subscription failure leaves the watcher stopped.
func (w *DirWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.path); err != nil {
		_ = fw.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.fw = fw
	w.cancel = cancel
	w.running = true

	go w.run(runCtx, fw)

	w.logger.Info("watching directory",
		logging.String(logging.FieldWatchPath, w.path),
		logging.Duration("debounce", w.debounce),
	)
	return nil
}

// Stop shuts down the event loop and waits for in-flight ingestions to
// observe cancellation.
func (w *DirWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	fw := w.fw
	w.cancel = nil
	w.fw = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if fw != nil {
		_ = fw.Close()
	}
	w.wg.Wait()
}

func (w *DirWatcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.markStopped()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && event.Name == w.path {
				logging.WarnWithContext(w.logger, "watched directory is gone, stopping watcher", "watch_path_removed",
					logging.String(logging.FieldWatchPath, w.path),
					logging.String(logging.FieldImpact, "directory is no longer watched"),
					logging.String(logging.FieldErrorHint, "recreate the directory and watch it again"),
				)
				return
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			if !w.shouldIngest(event.Name) {
				continue
			}
			w.wg.Add(1)
			go func(path string) {
				defer w.wg.Done()
				w.ingest(ctx, path)
			}(event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			if _, statErr := os.Stat(w.path); statErr != nil {
				logging.WarnWithContext(w.logger, "watch subscription broke, stopping watcher", "watch_subscription_lost",
					logging.String(logging.FieldWatchPath, w.path),
					logging.String(logging.FieldImpact, "directory is no longer watched"),
					logging.Error(err),
				)
				return
			}
			logging.WarnWithContext(w.logger, "watch error", "watch_event_error",
				logging.String(logging.FieldWatchPath, w.path),
				logging.Error(err),
			)
		}
	}
}

// markStopped flips the running flag and releases the subscription when the
// event loop exits on its own, so a dead watcher never reports running.
func (w *DirWatcher) markStopped() {
	w.mu.Lock()
	w.running = false
	cancel := w.cancel
	fw := w.fw
	w.cancel = nil
	w.fw = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if fw != nil {
		_ = fw.Close()
	}
}

// shouldIngest filters out dotfiles, files already carrying a claim suffix,
// and extensions outside the allow-list.
func (w *DirWatcher) shouldIngest(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if IsClaimed(base) {
		return false
	}
	return w.cfg.ExtensionAllowed(filepath.Ext(base))
}

func (w *DirWatcher) ingest(ctx context.Context, path string) {
	size, err := WaitForSettle(ctx, path, SettleOptions{
		Debounce:     w.debounce,
		PollInterval: time.Duration(w.cfg.Watcher.PollIntervalMs) * time.Millisecond,
		Timeout:      time.Duration(w.cfg.Watcher.SettleTimeoutS) * time.Second,
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrVanished):
		w.logger.Debug("file vanished before settling", logging.String(logging.FieldSourcePath, path))
		return
	case errors.Is(err, ErrSettleTimeout):
		logging.WarnWithContext(w.logger, "file never settled", "settle_timeout",
			logging.String(logging.FieldSourcePath, path),
			logging.String(logging.FieldErrorHint, "raise watcher.settle_timeout_s if large captures are expected"),
		)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return
	default:
		logging.WarnWithContext(w.logger, "stabilization failed", "settle_failed",
			logging.String(logging.FieldSourcePath, path),
			logging.Error(err),
		)
		return
	}

	claimed, err := Claim(path)
	if errors.Is(err, ErrClaimLost) {
		w.logger.Debug("claim lost to another claimant", logging.String(logging.FieldSourcePath, path))
		return
	}
	if err != nil {
		logging.WarnWithContext(w.logger, "claim failed", "claim_failed",
			logging.String(logging.FieldSourcePath, path),
			logging.Error(err),
		)
		return
	}

	record, err := w.store.InsertScreenshot(ctx, claimed, size)
	if err != nil {
		w.logger.Error("failed to record claimed screenshot",
			logging.String(logging.FieldSourcePath, claimed),
			logging.String(logging.FieldImpact, "claimed file is on disk but untracked"),
			logging.String(logging.FieldErrorHint, "check database health, then re-ingest the claimed file manually"),
			logging.Error(err),
		)
		return
	}

	w.notifier.Publish(ctx, notifications.EventIngested, notifications.Payload{
		"id":          record.ID,
		"source_path": record.SourcePath,
		"size":        record.Size,
	})
	w.logger.Info("screenshot ingested",
		logging.String(logging.FieldRecordID, record.ID),
		logging.String(logging.FieldSourcePath, record.SourcePath),
		logging.Int64("size", record.Size),
	)

	if w.resolver == nil {
		return
	}
	dest, err := w.resolver.ResolveAndMove(ctx, record.ID, w.path)
	if err != nil {
		logging.WarnWithContext(w.logger, "routing failed, record stays in inbox", "route_failed",
			logging.String(logging.FieldRecordID, record.ID),
			logging.Error(err),
		)
		return
	}
	if dest != "" {
		w.logger.Debug("screenshot routed on ingest",
			logging.String(logging.FieldRecordID, record.ID),
			logging.String(logging.FieldDestPath, dest),
		)
	}
}
