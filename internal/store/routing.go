package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const destinationColumns = "id, path, target_dir, name, icon, created_at"

const routeColumns = "id, source_path, dest_path, priority, active, created_at"

// UpsertDestination inserts a destination or, when the path already exists,
// updates its metadata in place. Path is the identity; re-adding never mints
// a new id.
func (s *Store) UpsertDestination(ctx context.Context, path, targetDir, name, icon string) (*Destination, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("destination path is required")
	}
	now := time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO destinations (id, path, target_dir, name, icon, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET target_dir = excluded.target_dir,
             name = excluded.name, icon = excluded.icon`,
		newID("dst"),
		path,
		targetDir,
		name,
		icon,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert destination: %w", err)
	}
	return s.GetDestination(ctx, path)
}

// GetDestination fetches a destination by its path key, nil when absent.
func (s *Store) GetDestination(ctx context.Context, path string) (*Destination, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+destinationColumns+` FROM destinations WHERE path = ?`, path)
	dest, err := scanDestination(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get destination: %w", err)
	}
	return dest, nil
}

// ListDestinations returns all destinations, newest first.
func (s *Store) ListDestinations(ctx context.Context) ([]*Destination, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+destinationColumns+` FROM destinations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()

	var dests []*Destination
	for rows.Next() {
		dest, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		dests = append(dests, dest)
	}
	return dests, rows.Err()
}

// DeleteDestination removes a destination by path. Routes referencing the
// path are left in place; resolution falls back to the raw path.
func (s *Store) DeleteDestination(ctx context.Context, path string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM destinations WHERE path = ?`, path)
	if err != nil {
		return false, fmt.Errorf("delete destination: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// AddRoute creates a routing rule from a watched source directory to a
// destination path.
func (s *Store) AddRoute(ctx context.Context, sourcePath, destPath string, priority int, active bool) (*Route, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	destPath = strings.TrimSpace(destPath)
	if sourcePath == "" || destPath == "" {
		return nil, errors.New("route source and destination paths are required")
	}
	now := time.Now().UTC()
	route := &Route{
		ID:         newID("rt"),
		SourcePath: sourcePath,
		DestPath:   destPath,
		Priority:   priority,
		Active:     active,
		CreatedAt:  now,
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO routes (id, source_path, dest_path, priority, active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		route.ID,
		route.SourcePath,
		route.DestPath,
		route.Priority,
		boolToInt(route.Active),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("add route: %w", err)
	}
	return route, nil
}

// ListRoutes returns routes ordered by (priority asc, created_at asc). When
// sourcePath is non-empty only routes for that source are returned.
func (s *Store) ListRoutes(ctx context.Context, sourcePath string) ([]*Route, error) {
	var (
		rows *sql.Rows
		err  error
	)
	ctx = ensureContext(ctx)
	if sourcePath == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+routeColumns+` FROM routes ORDER BY source_path, priority ASC, created_at ASC, id ASC`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+routeColumns+` FROM routes WHERE source_path = ? ORDER BY priority ASC, created_at ASC, id ASC`,
			sourcePath)
	}
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var routes []*Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

// GetRoute fetches a route by identifier, nil when absent.
func (s *Store) GetRoute(ctx context.Context, id string) (*Route, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+routeColumns+` FROM routes WHERE id = ?`, id)
	route, err := scanRoute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	return route, nil
}

// UpdateRoute adjusts priority and/or active on an existing route. Nil fields
// are left untouched; passing neither is a no-op that reports false.
func (s *Store) UpdateRoute(ctx context.Context, id string, priority *int, active *bool) (bool, error) {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *priority)
	}
	if active != nil {
		sets = append(sets, "active = ?")
		args = append(args, boolToInt(*active))
	}
	if len(sets) == 0 {
		return false, nil
	}
	args = append(args, id)

	res, err := s.execWithRetry(ctx,
		`UPDATE routes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("update route: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteRoute removes a route by identifier.
func (s *Store) DeleteRoute(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete route: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanDestination(scanner interface{ Scan(dest ...any) error }) (*Destination, error) {
	var (
		id         string
		path       string
		targetDir  string
		name       string
		icon       string
		createdRaw string
	)
	if err := scanner.Scan(&id, &path, &targetDir, &name, &icon, &createdRaw); err != nil {
		return nil, err
	}
	dest := &Destination{ID: id, Path: path, TargetDir: targetDir, Name: name, Icon: icon}
	if created, err := parseTimeString(createdRaw); err == nil {
		dest.CreatedAt = created
	}
	return dest, nil
}

func scanRoute(scanner interface{ Scan(dest ...any) error }) (*Route, error) {
	var (
		id         string
		sourcePath string
		destPath   string
		priority   int
		active     int
		createdRaw string
	)
	if err := scanner.Scan(&id, &sourcePath, &destPath, &priority, &active, &createdRaw); err != nil {
		return nil, err
	}
	route := &Route{
		ID:         id,
		SourcePath: sourcePath,
		DestPath:   destPath,
		Priority:   priority,
		Active:     active != 0,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		route.CreatedAt = created
	}
	return route, nil
}
