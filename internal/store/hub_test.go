package store

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func TestHubDeliversToPathSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, "games/night1/alive")
	hub.Publish(Event{Path: "games/night1/alive", Value: "3"})
	hub.Publish(Event{Path: "games/other/alive", Value: "9"})

	select {
	case evt := <-ch:
		if evt.Value != "3" {
			t.Fatalf("expected value 3, got %q", evt.Value)
		}
	case <-time.After(time.Second):
		t.Fatal("expected event delivery")
	}

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event for other path: %+v", evt)
	default:
	}
}

func TestHubClosesChannelOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	ch := hub.Subscribe(ctx, "games/night1/status")
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel, got event")
		}
	case <-time.After(time.Second):
		t.Fatal("expected channel to close after cancel")
	}

	// Publishing after unsubscribe must not panic.
	hub.Publish(Event{Path: "games/night1/status", Value: "started"})
}

func TestHubBoundsSlowSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, "p")
	for i := 0; i < watchBuffer*2; i++ {
		hub.Publish(Event{Path: "p", Value: "v"})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received != watchBuffer {
		t.Fatalf("expected %d buffered events, got %d", watchBuffer, received)
	}
}

func TestHubDeliversNewestToSlowSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fill the buffer and keep publishing without reading: older values
	// are discarded, but the final value must survive. A watcher asleep
	// during a burst of counter writes still has to see the last one.
	ch := hub.Subscribe(ctx, "games/night1/alive")
	for i := watchBuffer * 3; i >= 0; i-- {
		hub.Publish(Event{Path: "games/night1/alive", Value: strconv.Itoa(i)})
	}

	var last Event
	for {
		select {
		case evt := <-ch:
			last = evt
			continue
		default:
		}
		break
	}
	if last.Value != "0" {
		t.Fatalf("expected final value 0, got %q", last.Value)
	}
}
