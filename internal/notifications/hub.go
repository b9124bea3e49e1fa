package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shotrouter/internal/logging"
)

// Event identifies a lifecycle notification emitted by the core.
type Event string

const (
	EventIngested    Event = "ingested"
	EventRouted      Event = "routed"
	EventQuarantined Event = "quarantined"
	EventDeleted     Event = "deleted"
)

// Payload carries the event-specific fields delivered to subscribers.
type Payload map[string]any

// Envelope is one published event with its hub-assigned sequence number.
type Envelope struct {
	Sequence  uint64    `json:"sequence"`
	Event     Event     `json:"event"`
	Data      Payload   `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Service is the notification surface exposed to core components. Publish
// must never block the caller.
type Service interface {
	Publish(ctx context.Context, event Event, data Payload)
}

// NewNop returns a Service that discards all events.
func NewNop() Service { return nopService{} }

type nopService struct{}

func (nopService) Publish(context.Context, Event, Payload) {}

// Hub fans events out to subscribers through a bounded queue, decoupling the
// core from any transport lifecycle. When the queue is full the event is
// dropped and a warning logged; the core never stalls on a slow consumer.
type Hub struct {
	logger *slog.Logger
	queue  chan Envelope

	mu          sync.Mutex
	subscribers map[chan Envelope]struct{}
	recent      []Envelope
	recentMax   int
	seq         uint64
	closed      bool
	done        chan struct{}
}

// NewHub constructs a hub with the given queue capacity and starts its fanout
// worker. Close must be called to stop it.
func NewHub(bufferSize int, logger *slog.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	h := &Hub{
		logger:      logging.NewComponentLogger(logger, "notifications"),
		queue:       make(chan Envelope, bufferSize),
		subscribers: make(map[chan Envelope]struct{}),
		recentMax:   bufferSize,
		done:        make(chan struct{}),
	}
	go h.fanout()
	return h
}

// Publish enqueues an event without blocking. Events are dropped, with a
// warning, when the queue is saturated.
func (h *Hub) Publish(_ context.Context, event Event, data Payload) {
	if h == nil {
		return
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.seq++
	envelope := Envelope{
		Sequence:  h.seq,
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	h.mu.Unlock()

	select {
	case h.queue <- envelope:
	default:
		logging.WarnWithContext(h.logger, "notification queue full, event dropped", "notification_dropped",
			logging.String("event", string(event)),
			logging.String(logging.FieldImpact, "subscribers miss this event"),
			logging.String(logging.FieldErrorHint, "raise notifications.buffer_size or drain /api/events faster"),
		)
	}
}

// Subscribe registers a new consumer. The returned channel is closed when the
// returned cancel function runs or the hub shuts down. Slow subscribers lose
// events rather than blocking the fanout.
func (h *Hub) Subscribe(buffer int) (<-chan Envelope, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Envelope, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subscribers[ch]; ok {
				delete(h.subscribers, ch)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// EventsSince returns buffered events with sequence numbers greater than
// since, oldest first, plus the highest sequence seen. Used by the polling
// API endpoint.
func (h *Hub) EventsSince(since uint64) ([]Envelope, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []Envelope
	for _, envelope := range h.recent {
		if envelope.Sequence > since {
			out = append(out, envelope)
		}
	}
	return out, h.seq
}

// Close stops the fanout worker and closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.queue)
	h.mu.Unlock()

	<-h.done
}

func (h *Hub) fanout() {
	defer close(h.done)
	for envelope := range h.queue {
		h.mu.Lock()
		h.recent = append(h.recent, envelope)
		if len(h.recent) > h.recentMax {
			h.recent = h.recent[len(h.recent)-h.recentMax:]
		}
		for ch := range h.subscribers {
			select {
			case ch <- envelope:
			default:
			}
		}
		h.mu.Unlock()
	}

	h.mu.Lock()
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}
