// Package bolt provides a BoltDB-backed store backend.
package bolt

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/louisbranch/assassin/internal/store"
)

const kvBucket = "kv"

// Store provides a BoltDB-backed key/value store. Watch notifications are
// in-process; cross-process watchers need their own store instance and see
// values on read, not on change.
type Store struct {
	db  *bbolt.DB
	hub *store.Hub
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	s := &Store{db: db, hub: store.NewHub()}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBuckets() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(kvBucket))
		return err
	})
	if err != nil {
		return fmt.Errorf("create buckets: %w", err)
	}
	return nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the value at path.
func (s *Store) Get(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var value string
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(kvBucket)).Get([]byte(path))
		if raw == nil {
			return nil
		}
		value = string(raw)
		found = true
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("get %s: %w", path, err)
	}
	if !found {
		return "", store.ErrNotFound
	}
	return value, nil
}

// Set upserts the value at path.
func (s *Store) Set(ctx context.Context, path, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).Put([]byte(path), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}

	s.hub.Publish(store.Event{Path: path, Value: value})
	return nil
}

// Update atomically transforms the value at path. BoltDB serializes write
// transactions, so concurrent updates on the same path never interleave.
func (s *Store) Update(ctx context.Context, path string, fn store.UpdateFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var next string
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(kvBucket))
		raw := bucket.Get([]byte(path))

		value, err := fn(string(raw), raw != nil)
		if err != nil {
			return err
		}
		next = value
		return bucket.Put([]byte(path), []byte(value))
	})
	if err != nil {
		return "", err
	}

	s.hub.Publish(store.Event{Path: path, Value: next})
	return next, nil
}

// Delete removes the value at path.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).Delete([]byte(path))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// Children returns the sorted direct child keys under path via a prefix scan.
func (s *Store) Children(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	prefix := []byte(path + "/")
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket([]byte(kvBucket)).Cursor()
		for k, _ := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = cursor.Next() {
			if child := store.ChildKey(path, string(k)); child != "" {
				seen[child] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("children %s: %w", path, err)
	}

	children := make([]string, 0, len(seen))
	for child := range seen {
		children = append(children, child)
	}
	sort.Strings(children)
	return children, nil
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
