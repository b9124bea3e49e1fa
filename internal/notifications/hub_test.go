package notifications_test

import (
	"context"
	"testing"
	"time"

	"shotrouter/internal/logging"
	"shotrouter/internal/notifications"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	t.Parallel()

	hub := notifications.NewHub(8, logging.NewNop())
	defer hub.Close()

	ch, cancel := hub.Subscribe(4)
	defer cancel()

	hub.Publish(context.Background(), notifications.EventIngested, notifications.Payload{"id": "sr_1"})

	select {
	case envelope := <-ch:
		if envelope.Event != notifications.EventIngested {
			t.Fatalf("event = %s", envelope.Event)
		}
		if envelope.Sequence != 1 {
			t.Fatalf("sequence = %d, want 1", envelope.Sequence)
		}
		if envelope.Data["id"] != "sr_1" {
			t.Fatalf("payload = %v", envelope.Data)
		}
		if envelope.Timestamp.IsZero() {
			t.Fatal("timestamp not set")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventsSinceFiltersBySequence(t *testing.T) {
	t.Parallel()

	hub := notifications.NewHub(8, logging.NewNop())
	defer hub.Close()

	ctx := context.Background()
	hub.Publish(ctx, notifications.EventIngested, nil)
	hub.Publish(ctx, notifications.EventRouted, nil)
	hub.Publish(ctx, notifications.EventDeleted, nil)

	// The fanout worker buffers asynchronously; wait for it to catch up.
	deadline := time.Now().Add(2 * time.Second)
	for {
		events, next := hub.EventsSince(0)
		if len(events) == 3 {
			if next != 3 {
				t.Fatalf("next = %d, want 3", next)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d events buffered", len(events))
		}
		time.Sleep(5 * time.Millisecond)
	}

	events, next := hub.EventsSince(2)
	if len(events) != 1 || events[0].Event != notifications.EventDeleted {
		t.Fatalf("events = %v", events)
	}
	if next != 3 {
		t.Fatalf("next = %d, want 3", next)
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	t.Parallel()

	hub := notifications.NewHub(2, logging.NewNop())
	defer hub.Close()

	// Never drained.
	_, cancel := hub.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			hub.Publish(context.Background(), notifications.EventIngested, nil)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	t.Parallel()

	hub := notifications.NewHub(8, logging.NewNop())
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	hub.Close()

	select {
	case _, ok := <-ch:
		if ok {
			// Drain a buffered event; the close must follow.
			if _, ok := <-ch; ok {
				t.Fatal("channel still open after Close")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber channel not closed")
	}

	// Publishing after Close is a no-op, not a panic.
	hub.Publish(context.Background(), notifications.EventRouted, nil)
}

func TestNopServiceDiscards(t *testing.T) {
	t.Parallel()

	svc := notifications.NewNop()
	svc.Publish(context.Background(), notifications.EventIngested, notifications.Payload{"id": "x"})
}
