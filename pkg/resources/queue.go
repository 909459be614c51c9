package resources

import (
	"fmt"
	"sync"
	"time"

	"github.com/edgedeck/edgedeck/internal/id"
	"github.com/edgedeck/edgedeck/pkg/project"
	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

// QueueMessage is one message in flight through a queue.
type QueueMessage struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Attempts  int       `json:"attempts"`
}

// QueueStats is a point-in-time snapshot of a queue's counters.
type QueueStats struct {
	Name         string `json:"name"`
	Depth        int    `json:"depth"`
	Sent         int64  `json:"sent"`
	Delivered    int64  `json:"delivered"`
	Failed       int64  `json:"failed"`
	DeadLettered int64  `json:"deadLettered"`
	Consumers    int    `json:"consumers"`
}

// DeliveryFunc hands a batch to a consumer. A non-nil error fails the whole
// batch; failed messages are retried and eventually dead-lettered.
type DeliveryFunc func(queue string, batch []*QueueMessage) error

// Broker manages all queues for a project: producers enqueue with Send, and
// one worker goroutine per declared consumer drains messages in batches.
// Deliveries and failures are reported into the telemetry hub with source
// "queue".
type Broker struct {
	hub     *telemetry.Hub
	deliver DeliveryFunc

	mu     sync.Mutex
	queues map[string]*queueState

	done chan struct{}
	wg   sync.WaitGroup
}

type queueState struct {
	name string

	mu           sync.Mutex
	pending      []*QueueMessage
	sent         int64
	delivered    int64
	failed       int64
	deadLettered int64
	consumers    int

	notify chan struct{}
}

// NewBroker creates a Broker reporting into hub. A nil deliver function
// accepts every batch, which is the local-emulation default.
func NewBroker(hub *telemetry.Hub, deliver DeliveryFunc) *Broker {
	if deliver == nil {
		deliver = func(string, []*QueueMessage) error { return nil }
	}
	return &Broker{
		hub:     hub,
		deliver: deliver,
		queues:  make(map[string]*queueState),
		done:    make(chan struct{}),
	}
}

// Send enqueues a message body onto the named queue, creating the queue on
// first use.
func (b *Broker) Send(queue, body string) *QueueMessage {
	msg := &QueueMessage{
		ID:        id.ULID(),
		Body:      body,
		Timestamp: time.Now(),
	}

	q := b.queue(queue)
	q.mu.Lock()
	q.pending = append(q.pending, msg)
	q.sent++
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return msg
}

// AddConsumer attaches a consumer to its queue and starts its delivery
// worker. The config is expected to already carry discovery defaults.
func (b *Broker) AddConsumer(cfg project.QueueConsumerConfig) {
	q := b.queue(cfg.Queue)
	q.mu.Lock()
	q.consumers++
	q.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consumeLoop(q, cfg)
	}()
}

// Stats returns a snapshot per known queue.
func (b *Broker) Stats() []QueueStats {
	b.mu.Lock()
	states := make([]*queueState, 0, len(b.queues))
	for _, q := range b.queues {
		states = append(states, q)
	}
	b.mu.Unlock()

	stats := make([]QueueStats, 0, len(states))
	for _, q := range states {
		q.mu.Lock()
		stats = append(stats, QueueStats{
			Name:         q.name,
			Depth:        len(q.pending),
			Sent:         q.sent,
			Delivered:    q.delivered,
			Failed:       q.failed,
			DeadLettered: q.deadLettered,
			Consumers:    q.consumers,
		})
		q.mu.Unlock()
	}
	return stats
}

// Close stops all delivery workers and waits for them to exit. Pending
// messages are discarded.
func (b *Broker) Close() {
	close(b.done)
	b.wg.Wait()
}

func (b *Broker) queue(name string) *queueState {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[name]
	if !ok {
		q = &queueState{name: name, notify: make(chan struct{}, 1)}
		b.queues[name] = q
	}
	return q
}

// consumeLoop waits for messages, lets a batch accumulate up to the
// configured size or timeout, then delivers.
func (b *Broker) consumeLoop(q *queueState, cfg project.QueueConsumerConfig) {
	timeout := time.Duration(cfg.MaxBatchTimeout) * time.Second
	for {
		select {
		case <-b.done:
			return
		case <-q.notify:
		}

		window := time.NewTimer(timeout)
	fill:
		for q.depth() < cfg.MaxBatchSize {
			select {
			case <-b.done:
				window.Stop()
				return
			case <-q.notify:
			case <-window.C:
				break fill
			}
		}
		window.Stop()

		for {
			batch := q.take(cfg.MaxBatchSize)
			if len(batch) == 0 {
				break
			}
			b.deliverBatch(q, cfg, batch)
		}
	}
}

func (b *Broker) deliverBatch(q *queueState, cfg project.QueueConsumerConfig, batch []*QueueMessage) {
	for _, m := range batch {
		m.Attempts++
	}

	err := b.deliver(q.name, batch)
	if err == nil {
		q.mu.Lock()
		q.delivered += int64(len(batch))
		q.mu.Unlock()
		b.hub.Log(telemetry.LevelInfo,
			fmt.Sprintf("Delivered batch of %d message(s) from queue %q", len(batch), q.name),
			map[string]any{"queue": q.name, "batchSize": len(batch)},
			telemetry.SourceQueue)
		return
	}

	q.mu.Lock()
	q.failed += int64(len(batch))
	q.mu.Unlock()
	b.hub.Log(telemetry.LevelError,
		fmt.Sprintf("Delivery failed for queue %q: %v", q.name, err),
		map[string]any{"queue": q.name, "batchSize": len(batch)},
		telemetry.SourceQueue)

	for _, m := range batch {
		if m.Attempts <= cfg.MaxRetries {
			q.requeue(m)
			continue
		}
		if cfg.DeadLetterQueue != "" {
			dlq := b.queue(cfg.DeadLetterQueue)
			dlq.mu.Lock()
			dlq.pending = append(dlq.pending, m)
			dlq.sent++
			dlq.mu.Unlock()
			select {
			case dlq.notify <- struct{}{}:
			default:
			}
			q.mu.Lock()
			q.deadLettered++
			q.mu.Unlock()
			b.hub.Log(telemetry.LevelWarn,
				fmt.Sprintf("Message %s moved to dead-letter queue %q after %d attempt(s)", m.ID, cfg.DeadLetterQueue, m.Attempts),
				map[string]any{"queue": q.name, "deadLetterQueue": cfg.DeadLetterQueue, "messageId": m.ID},
				telemetry.SourceQueue)
			continue
		}
		q.mu.Lock()
		q.deadLettered++
		q.mu.Unlock()
		b.hub.Log(telemetry.LevelWarn,
			fmt.Sprintf("Message %s dropped after %d attempt(s), no dead-letter queue configured", m.ID, m.Attempts),
			map[string]any{"queue": q.name, "messageId": m.ID},
			telemetry.SourceQueue)
	}

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *queueState) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *queueState) take(n int) []*QueueMessage {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	if n > len(q.pending) {
		n = len(q.pending)
	}
	batch := make([]*QueueMessage, n)
	copy(batch, q.pending[:n])
	q.pending = q.pending[n:]
	return batch
}

func (q *queueState) requeue(m *QueueMessage) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, m)
}
