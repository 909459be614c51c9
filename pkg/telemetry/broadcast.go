package telemetry

import "sync"

// Event names published through the Broadcaster.
const (
	EventConnected = "connected"
	EventRequest   = "request"
	EventLog       = "log"
)

// Event is a named payload fanned out to every subscriber.
type Event struct {
	Name    string
	Payload any
}

// DefaultMailboxSize is the per-subscriber buffer used when Subscribe is
// called with a non-positive size.
const DefaultMailboxSize = 64

type subscriber struct {
	ch   chan Event
	once sync.Once
}

// Broadcaster fans out events to a mutable set of subscribers. Each
// subscriber owns a bounded mailbox channel; Publish enqueues with a
// non-blocking send and drops the event for any subscriber whose mailbox is
// full, so one slow viewer can never stall delivery to the rest or block the
// publisher. There is no ordering contract across subscribers, but a single
// subscriber always observes events in emission order.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers a new subscriber with a mailbox of the given size and
// returns its receive channel plus an unsubscribe function. Unsubscribing
// removes the registration and closes the channel; calling it more than once
// is a no-op.
func (b *Broadcaster) Subscribe(mailbox int) (<-chan Event, func()) {
	if mailbox <= 0 {
		mailbox = DefaultMailboxSize
	}
	sub := &subscriber{ch: make(chan Event, mailbox)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		sub.once.Do(func() {
			b.mu.Lock()
			delete(b.subs, sub)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, unsubscribe
}

// Publish delivers the event to every currently-registered subscriber. A full
// mailbox drops this event for that subscriber only (drop-newest). Publish
// never blocks.
func (b *Broadcaster) Publish(name string, payload any) {
	ev := Event{Name: name, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			// Subscriber is not draining; drop rather than stall.
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
