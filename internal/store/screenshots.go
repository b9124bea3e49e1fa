package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const screenshotColumns = "id, source_path, dest_path, status, size, created_at, moved_at"

// InsertScreenshot creates a new inbox record for a claimed file. Fails only
// on storage I/O errors, which the caller must surface.
func (s *Store) InsertScreenshot(ctx context.Context, sourcePath string, size int64) (*Record, error) {
	if sourcePath == "" {
		return nil, errors.New("source path is required")
	}
	now := time.Now().UTC()
	record := &Record{
		ID:         newID("sr"),
		SourcePath: sourcePath,
		Status:     StatusInbox,
		Size:       size,
		CreatedAt:  now,
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO screenshots (id, source_path, status, size, created_at) VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.SourcePath,
		record.Status,
		record.Size,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert screenshot: %w", err)
	}
	return record, nil
}

// Get fetches a screenshot record by identifier, nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+screenshotColumns+` FROM screenshots WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get screenshot: %w", err)
	}
	return record, nil
}

// List returns records newest-first, optionally filtered by status, sliced by
// limit/offset. Pagination is a pure slice of the sorted sequence.
func (s *Store) List(ctx context.Context, status Status, limit, offset int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var (
		rows *sql.Rows
		err  error
	)
	ctx = ensureContext(ctx)
	if status == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+screenshotColumns+` FROM screenshots ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
			limit, offset)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+screenshotColumns+` FROM screenshots WHERE status = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
			status, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// MarkRouted sets status=routed, dest_path, and moved_at. Returns false when
// the id is unknown. Calling twice is harmless; the fields are re-set and the
// second call still reports true.
func (s *Store) MarkRouted(ctx context.Context, id, destPath string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE screenshots SET status = ?, dest_path = ?, moved_at = ? WHERE id = ?`,
		StatusRouted,
		destPath,
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("mark routed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkQuarantined moves a record into the quarantined terminal state.
func (s *Store) MarkQuarantined(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE screenshots SET status = ? WHERE id = ?`,
		StatusQuarantined,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("mark quarantined: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a record by identifier.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM screenshots WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete screenshot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns a count of records grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT status, COUNT(1) FROM screenshots GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("screenshot stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id         string
		sourcePath string
		destPath   sql.NullString
		statusStr  string
		size       int64
		createdRaw string
		movedRaw   sql.NullString
	)
	if err := scanner.Scan(&id, &sourcePath, &destPath, &statusStr, &size, &createdRaw, &movedRaw); err != nil {
		return nil, err
	}

	record := &Record{
		ID:         id,
		SourcePath: sourcePath,
		DestPath:   destPath.String,
		Status:     Status(statusStr),
		Size:       size,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		record.CreatedAt = created
	}
	if movedRaw.Valid {
		if moved, err := parseTimeString(movedRaw.String); err == nil {
			record.MovedAt = &moved
		}
	}
	return record, nil
}
