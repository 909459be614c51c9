package telemetry

import (
	"sync"
	"testing"
	"time"
)

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestBroadcasterDelivery(t *testing.T) {
	b := NewBroadcaster()
	ch, unsub := b.Subscribe(8)
	defer unsub()

	b.Publish(EventLog, "one")
	b.Publish(EventLog, "two")

	got := drain(ch)
	if len(got) != 2 {
		t.Fatalf("received %d events, want 2", len(got))
	}
	if got[0].Payload != "one" || got[1].Payload != "two" {
		t.Errorf("events out of emission order: %v", got)
	}
}

func TestBroadcasterMultipleSubscribers(t *testing.T) {
	b := NewBroadcaster()
	ch1, unsub1 := b.Subscribe(8)
	ch2, unsub2 := b.Subscribe(8)
	defer unsub1()
	defer unsub2()

	b.Publish(EventRequest, "payload")

	if got := drain(ch1); len(got) != 1 {
		t.Errorf("subscriber 1 received %d events", len(got))
	}
	if got := drain(ch2); len(got) != 1 {
		t.Errorf("subscriber 2 received %d events", len(got))
	}
}

func TestBroadcasterSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster()
	// A stalled subscriber with a tiny mailbox.
	_, unsubSlow := b.Subscribe(1)
	defer unsubSlow()
	healthy, unsubOK := b.Subscribe(16)
	defer unsubOK()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish(EventLog, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The healthy subscriber got everything despite the stalled one.
	if got := drain(healthy); len(got) != 10 {
		t.Errorf("healthy subscriber received %d events, want 10", len(got))
	}
}

func TestBroadcasterUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	ch, unsub := b.Subscribe(8)

	unsub()
	if b.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d after unsubscribe", b.SubscriberCount())
	}

	// Channel is closed.
	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}

	// Double-unsubscribe is a no-op, not a panic.
	unsub()

	// Publishing after unsubscribe delivers to no one and does not panic.
	b.Publish(EventLog, "dropped")
}

func TestBroadcasterNoRetroactiveReplay(t *testing.T) {
	b := NewBroadcaster()

	early, unsubEarly := b.Subscribe(8)
	defer unsubEarly()

	b.Publish(EventLog, "before-late-subscriber")

	late, unsubLate := b.Subscribe(8)
	defer unsubLate()

	if got := drain(early); len(got) != 1 {
		t.Errorf("early subscriber received %d events, want 1", len(got))
	}
	if got := drain(late); len(got) != 0 {
		t.Errorf("late subscriber received %d events, want 0 (no history replay)", len(got))
	}
}

func TestBroadcasterConcurrentSubscribePublish(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			b.Publish(EventLog, i)
		}
	}()

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				ch, unsub := b.Subscribe(4)
				drain(ch)
				unsub()
			}
		}()
	}
	wg.Wait()

	if b.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d, want 0", b.SubscriberCount())
	}
}
