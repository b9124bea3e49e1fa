package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shotrouter/internal/config"
	"shotrouter/internal/logging"
	"shotrouter/internal/notifications"
	"shotrouter/internal/store"
	"shotrouter/internal/watcher"
)

var (
	// ErrRecordNotFound reports an unknown screenshot identifier.
	ErrRecordNotFound = errors.New("screenshot record not found")
	// ErrNotRoutable reports a record that already left the inbox.
	ErrNotRoutable = errors.New("record is not in the inbox")
)

// Router moves claimed screenshots to their destinations and keeps record
// state in step with the filesystem. The file moves first; only a completed
// move flips the record to routed, so a crash between the two leaves an
// inbox record pointing at the claimed file.
type Router struct {
	cfg      *config.Config
	store    *store.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// New builds a router over the given store.
func New(cfg *config.Config, st *store.Store, notifier notifications.Service, logger *slog.Logger) *Router {
	if notifier == nil {
		notifier = notifications.NewNop()
	}
	return &Router{
		cfg:      cfg,
		store:    st,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "router"),
	}
}

// ResolveAndMove routes a record using the rules for its source directory.
// The first active rule in priority order wins. No matching rule is not an
// error; the record stays in the inbox and the returned path is empty.
func (r *Router) ResolveAndMove(ctx context.Context, recordID, sourceDir string) (string, error) {
	routes, err := r.store.ListRoutes(ctx, sourceDir)
	if err != nil {
		return "", fmt.Errorf("resolve routes: %w", err)
	}

	for _, route := range routes {
		if !route.Active {
			continue
		}
		destRoot, targetDir := route.DestPath, ""
		// Routes outlive destination deletion; a missing destination
		// falls back to the raw route path with no subdirectory.
		if dest, err := r.store.GetDestination(ctx, route.DestPath); err != nil {
			return "", fmt.Errorf("resolve destination: %w", err)
		} else if dest != nil {
			destRoot, targetDir = dest.Path, dest.TargetDir
		}
		return r.RouteTo(ctx, recordID, destRoot, targetDir)
	}
	return "", nil
}

// RouteTo moves an inbox record's file into destRoot/targetDir and marks the
// record routed. The final filename is the record id plus the original
// extension. A failed move leaves the record in the inbox.
func (r *Router) RouteTo(ctx context.Context, recordID, destRoot, targetDir string) (string, error) {
	record, err := r.store.Get(ctx, recordID)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", ErrRecordNotFound
	}
	if record.Status != store.StatusInbox {
		return "", fmt.Errorf("%w: %s is %s", ErrNotRoutable, record.ID, record.Status)
	}

	ext := watcher.OriginalExt(record.SourcePath, r.cfg.Watcher.FallbackExt)
	destPath := filepath.Join(destRoot, targetDir, record.ID+ext)

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}
	if err := moveFile(r.logger, record.SourcePath, destPath); err != nil {
		return "", fmt.Errorf("move %s: %w", record.SourcePath, err)
	}

	if _, err := r.store.MarkRouted(ctx, record.ID, destPath); err != nil {
		r.logger.Error("file moved but record update failed",
			logging.String(logging.FieldRecordID, record.ID),
			logging.String(logging.FieldDestPath, destPath),
			logging.String(logging.FieldImpact, "record still shows inbox; re-routing will fail to find the file"),
			logging.String(logging.FieldErrorHint, "check database health and reconcile the record manually"),
			logging.Error(err),
		)
		return "", err
	}

	r.notifier.Publish(ctx, notifications.EventRouted, notifications.Payload{
		"id":        record.ID,
		"dest_path": destPath,
	})
	r.logger.Info("screenshot routed",
		logging.String(logging.FieldRecordID, record.ID),
		logging.String(logging.FieldDestPath, destPath),
	)
	return destPath, nil
}

// Quarantine parks a record so it stops appearing in the inbox. The file is
// left wherever it currently sits.
func (r *Router) Quarantine(ctx context.Context, recordID string) (*store.Record, error) {
	record, err := r.store.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}

	if _, err := r.store.MarkQuarantined(ctx, recordID); err != nil {
		return nil, err
	}
	r.notifier.Publish(ctx, notifications.EventQuarantined, notifications.Payload{
		"id": recordID,
	})

	return r.store.Get(ctx, recordID)
}

// Delete removes a record and, when removeFile is set, the file it points at
// (the routed destination if routed, otherwise the claimed source). A file
// already gone is not an error.
func (r *Router) Delete(ctx context.Context, recordID string, removeFile bool) error {
	record, err := r.store.Get(ctx, recordID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrRecordNotFound
	}

	if removeFile {
		target := record.SourcePath
		if record.Status == store.StatusRouted && record.DestPath != "" {
			target = record.DestPath
		}
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", target, err)
		}
	}

	if _, err := r.store.Delete(ctx, recordID); err != nil {
		return err
	}
	r.notifier.Publish(ctx, notifications.EventDeleted, notifications.Payload{
		"id": recordID,
	})
	return nil
}
