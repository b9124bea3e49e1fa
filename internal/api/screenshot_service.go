package api

import (
	"context"
	"fmt"
	"strings"

	"shotrouter/internal/router"
	"shotrouter/internal/store"
)

// ScreenshotService exposes record queries and the manual lifecycle
// operations (route, quarantine, delete) as API DTOs.
type ScreenshotService struct {
	store  *store.Store
	router *router.Router
}

// NewScreenshotService constructs a ScreenshotService.
func NewScreenshotService(st *store.Store, rt *router.Router) *ScreenshotService {
	if st == nil {
		return nil
	}
	return &ScreenshotService{store: st, router: rt}
}

// List returns records filtered by status, newest first.
func (s *ScreenshotService) List(ctx context.Context, status string, limit, offset int) ([]Screenshot, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	var filter store.Status
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		parsed, ok := store.ParseStatus(trimmed)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", trimmed)
		}
		filter = parsed
	}
	records, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	return FromRecords(records), nil
}

// Describe fetches a single record, nil when absent.
func (s *ScreenshotService) Describe(ctx context.Context, id string) (*Screenshot, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	record, err := s.store.Get(ctx, id)
	if err != nil || record == nil {
		return nil, err
	}
	dto := FromRecord(record)
	return &dto, nil
}

// Stats returns record counts keyed by status string.
func (s *ScreenshotService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeStats(stats), nil
}

// Route moves an inbox record to destPath/targetDir. When targetDir is empty
// and destPath names a registered destination, the destination's target
// subdirectory applies.
func (s *ScreenshotService) Route(ctx context.Context, id, destPath, targetDir string) (*Screenshot, error) {
	if s == nil || s.router == nil {
		return nil, nil
	}
	if targetDir == "" {
		dest, err := s.store.GetDestination(ctx, destPath)
		if err != nil {
			return nil, err
		}
		if dest != nil {
			destPath, targetDir = dest.Path, dest.TargetDir
		}
	}
	if _, err := s.router.RouteTo(ctx, id, destPath, targetDir); err != nil {
		return nil, err
	}
	return s.Describe(ctx, id)
}

// Quarantine parks a record out of the inbox.
func (s *ScreenshotService) Quarantine(ctx context.Context, id string) (*Screenshot, error) {
	if s == nil || s.router == nil {
		return nil, nil
	}
	record, err := s.router.Quarantine(ctx, id)
	if err != nil || record == nil {
		return nil, err
	}
	dto := FromRecord(record)
	return &dto, nil
}

// Delete removes a record and optionally its file.
func (s *ScreenshotService) Delete(ctx context.Context, id string, removeFile bool) error {
	if s == nil || s.router == nil {
		return nil
	}
	return s.router.Delete(ctx, id, removeFile)
}
