// Package telemetry records operational events for game lifecycle changes.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/louisbranch/assassin/internal/id"
	"github.com/louisbranch/assassin/internal/store"
)

// Event is a single recorded lifecycle event.
type Event struct {
	Kind      string            `json:"kind"`
	Game      string            `json:"game,omitempty"`
	Player    string            `json:"player,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Emitter records telemetry events under the telemetry/ path.
type Emitter struct {
	store       store.Store
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(st store.Store) *Emitter {
	return &Emitter{store: st, clock: time.Now, idGenerator: id.NewID}
}

// Emit records a telemetry event. It is a no-op when the emitter is nil.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.clock().UTC()
	}

	eventID, err := e.idGenerator()
	if err != nil {
		return fmt.Errorf("generate event id: %w", err)
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return e.store.Set(ctx, store.Join("telemetry", eventID), string(payload))
}
