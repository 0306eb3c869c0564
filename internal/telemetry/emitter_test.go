package telemetry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/louisbranch/assassin/internal/store/memory"
)

func TestEmitRecordsEvent(t *testing.T) {
	st := memory.New()
	defer st.Close()
	ctx := context.Background()

	emitter := NewEmitter(st)
	emitter.clock = func() time.Time {
		return time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	}

	if err := emitter.Emit(ctx, Event{Kind: "game_started", Game: "Night1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	children, err := st.Children(ctx, "telemetry")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("expected one event record, got %d", len(children))
	}

	raw, err := st.Get(ctx, "telemetry/"+children[0])
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	var evt Event
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if evt.Kind != "game_started" || evt.Game != "Night1" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if !evt.Timestamp.Equal(time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %v", evt.Timestamp)
	}
}

func TestEmitNilSafe(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), Event{Kind: "noop"}); err != nil {
		t.Fatalf("expected nil emitter to be a no-op, got %v", err)
	}
}
