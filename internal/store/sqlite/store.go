// Package sqlite provides a SQLite-backed store backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/assassin/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	path TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at_ms INTEGER NOT NULL
);
`

// Store provides a SQLite-backed key/value store. Watch notifications are
// in-process, matching the bolt backend.
type Store struct {
	sqlDB *sql.DB
	hub   *store.Hub
	clock func() time.Time
}

// Open opens a SQLite-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{sqlDB: sqlDB, hub: store.NewHub(), clock: time.Now}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Get returns the value at path.
func (s *Store) Get(ctx context.Context, path string) (string, error) {
	var value string
	err := s.sqlDB.QueryRowContext(ctx, "SELECT value FROM kv WHERE path = ?", path).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", path, err)
	}
	return value, nil
}

// Set upserts the value at path.
func (s *Store) Set(ctx context.Context, path, value string) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO kv (path, value, updated_at_ms) VALUES (?, ?, ?) ON CONFLICT(path) DO UPDATE SET value = excluded.value, updated_at_ms = excluded.updated_at_ms",
		path, value, toMillis(s.clock()))
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}

	s.hub.Publish(store.Event{Path: path, Value: value})
	return nil
}

// Update atomically transforms the value at path inside a write transaction.
func (s *Store) Update(ctx context.Context, path string, fn store.UpdateFunc) (string, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin update %s: %w", path, err)
	}
	defer func() { _ = tx.Rollback() }()

	// The no-op write takes the database write lock up front so concurrent
	// updates queue on the busy timeout instead of failing on lock upgrade.
	if _, err := tx.ExecContext(ctx, "UPDATE kv SET path = path WHERE 1 = 0"); err != nil {
		return "", fmt.Errorf("lock for update %s: %w", path, err)
	}

	var current string
	exists := true
	err = tx.QueryRowContext(ctx, "SELECT value FROM kv WHERE path = ?", path).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	next, err := fn(current, exists)
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO kv (path, value, updated_at_ms) VALUES (?, ?, ?) ON CONFLICT(path) DO UPDATE SET value = excluded.value, updated_at_ms = excluded.updated_at_ms",
		path, next, toMillis(s.clock()))
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit update %s: %w", path, err)
	}

	s.hub.Publish(store.Event{Path: path, Value: next})
	return next, nil
}

// Delete removes the value at path.
func (s *Store) Delete(ctx context.Context, path string) error {
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM kv WHERE path = ?", path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// Children returns the sorted direct child keys under path.
func (s *Store) Children(ctx context.Context, path string) ([]string, error) {
	prefix := path + "/"
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT path FROM kv WHERE path LIKE ? ESCAPE '\\'", likePattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("children %s: %w", path, err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan child of %s: %w", path, err)
		}
		if child := store.ChildKey(path, key); child != "" {
			seen[child] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read children of %s: %w", path, err)
	}

	children := make([]string, 0, len(seen))
	for child := range seen {
		children = append(children, child)
	}
	sort.Strings(children)
	return children, nil
}

// likePattern escapes LIKE metacharacters in prefix and appends the wildcard.
func likePattern(prefix string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(prefix) + "%"
}

// Watch streams value changes for path until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, path string) (<-chan store.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.hub.Watch(ctx, path, func() (string, bool) {
		value, err := s.Get(ctx, path)
		return value, err == nil
	}), nil
}
