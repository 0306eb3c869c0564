// Package memory provides an in-memory store backend, used by tests and
// single-process deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/louisbranch/assassin/internal/store"
)

// Store is a mutex-guarded in-memory store.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	hub    *store.Hub
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		values: make(map[string]string),
		hub:    store.NewHub(),
	}
}

// Get returns the value at path.
func (s *Store) Get(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[path]
	if !ok {
		return "", store.ErrNotFound
	}
	return value, nil
}

// Set upserts the value at path.
func (s *Store) Set(ctx context.Context, path, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.values[path] = value
	s.mu.Unlock()

	s.hub.Publish(store.Event{Path: path, Value: value})
	return nil
}

// Update atomically transforms the value at path. The write lock is held
// across the read, the transform, and the write.
func (s *Store) Update(ctx context.Context, path string, fn store.UpdateFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	current, exists := s.values[path]
	next, err := fn(current, exists)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.values[path] = next
	s.mu.Unlock()

	s.hub.Publish(store.Event{Path: path, Value: next})
	return next, nil
}

// Delete removes the value at path.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.values, path)
	s.mu.Unlock()
	return nil
}

// Children returns the sorted direct child keys under path.
func (s *Store) Children(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	seen := make(map[string]struct{})
	for key := range s.values {
		if child := store.ChildKey(path, key); child != "" {
			seen[child] = struct{}{}
		}
	}
	s.mu.RUnlock()

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
		s.mu.RLock()
		defer s.mu.RUnlock()
		value, ok := s.values[path]
		return value, ok
	}), nil
}

// Close releases the store.
func (s *Store) Close() error {
	return nil
}
