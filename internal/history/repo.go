package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/starford/fusendo/internal/models"
)

// Limits for Recent.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Store is the history interface consumed by the command service.
type Store interface {
	Record(ctx context.Context, command, path string, isDir bool) error
	Recent(ctx context.Context, limit int) ([]models.Location, error)
	LastDir(ctx context.Context, command string) (string, error)
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// Record stores a location. For files, dir is the parent directory; for
// picked folders it is the folder itself.
func (db *DB) Record(ctx context.Context, command, path string, isDir bool) error {
	dir := path
	if !isDir {
		dir = filepath.Dir(path)
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO locations (command, path, dir, created_at) VALUES (?, ?, ?, ?)`,
		command, path, dir, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// Recent returns the newest locations first.
func (db *DB) Recent(ctx context.Context, limit int) ([]models.Location, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT command, path, dir, created_at
		FROM locations
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	out := []models.Location{}
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.Command, &l.Path, &l.Dir, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LastDir returns the directory of the newest location recorded for
// command, or "" when there is none.
func (db *DB) LastDir(ctx context.Context, command string) (string, error) {
	var dir string
	err := db.conn.QueryRowContext(ctx,
		`SELECT dir FROM locations WHERE command = ? ORDER BY id DESC LIMIT 1`, command).Scan(&dir)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("history: last dir: %w", err)
	}
	return dir, nil
}
