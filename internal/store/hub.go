package store

import (
	"context"
	"sync"
)

// watchBuffer is the per-subscription channel buffer. A watcher that falls
// this far behind loses intermediate values, never the newest one.
const watchBuffer = 16

type subscriber struct {
	ch   chan Event
	done chan struct{}
}

// Hub fans out in-process value-change notifications to path watchers.
// Backends publish after every committed write.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub creates an empty notification hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers a watcher for path. The returned channel closes when
// ctx is cancelled.
func (h *Hub) Subscribe(ctx context.Context, path string) <-chan Event {
	sub := &subscriber{
		ch:   make(chan Event, watchBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.subs[path]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[path] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if set, ok := h.subs[path]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, path)
			}
		}
		close(sub.done)
		close(sub.ch)
		h.mu.Unlock()
	}()

	return sub.ch
}

// Watch subscribes to path and prefixes the stream with the current value
// when one exists. The subscription is registered before read runs, so no
// write is lost between the two; at worst a watcher sees the same value
// twice.
func (h *Hub) Watch(ctx context.Context, path string, read func() (string, bool)) <-chan Event {
	sub := h.Subscribe(ctx, path)
	out := make(chan Event, 1)
	current, exists := read()

	go func() {
		defer close(out)
		if exists {
			select {
			case out <- Event{Path: path, Value: current}:
			case <-ctx.Done():
				return
			}
		}
		for evt := range sub {
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Publish delivers an event to every watcher of evt.Path. When a slow
// watcher's buffer is full the oldest buffered event is discarded to
// make room, so the newest value is always delivered. Watchers can lose
// intermediate values, never the latest one.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[evt.Path] {
		select {
		case <-sub.done:
			continue
		default:
		}
		select {
		case sub.ch <- evt:
			continue
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}
