package telemetry

import "sync"

// Default ring buffer capacities.
const (
	DefaultRequestCapacity = 500
	DefaultLogCapacity     = 1000
)

// RequestStore is a fixed-capacity ring buffer of captured requests. Appends
// past capacity evict the oldest entries, preserving the relative order of
// survivors. All methods are safe for concurrent use.
type RequestStore struct {
	mu       sync.RWMutex
	entries  []*CapturedRequest
	capacity int
}

// NewRequestStore creates a RequestStore with the given capacity.
func NewRequestStore(capacity int) *RequestStore {
	if capacity <= 0 {
		capacity = DefaultRequestCapacity
	}
	return &RequestStore{
		entries:  make([]*CapturedRequest, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a capture, evicting the oldest entry at capacity.
func (s *RequestStore) Append(req *CapturedRequest) {
	if req == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.capacity {
		s.entries = s.entries[1:]
	}
	s.entries = append(s.entries, req)
}

// All returns a snapshot of every stored capture, oldest first. Records are
// deep copies made under the lock: a capture completing after the snapshot is
// taken never mutates what a reader is serializing.
func (s *RequestStore) All() []*CapturedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*CapturedRequest, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// Recent returns deep copies of the last n captures, oldest first. If n
// exceeds the current size the whole snapshot is returned.
func (s *RequestStore) Recent(n int) []*CapturedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]*CapturedRequest, n)
	for i, e := range s.entries[len(s.entries)-n:] {
		out[i] = e.Clone()
	}
	return out
}

// Get retrieves a deep copy of a capture by ID, or nil if unknown or already
// evicted.
func (s *RequestStore) Get(id string) *CapturedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e.Clone()
		}
	}
	return nil
}

// Complete attaches the response to the pending capture with the given ID and
// returns a deep copy of the completed record, safe to publish outside the
// lock. It returns nil if the record is unknown or evicted (a completion
// racing a Clear is silently dropped), or if the record already has a response
// attached.
func (s *RequestStore) Complete(id string, resp *CapturedResponse) *CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			if e.Response != nil {
				return nil
			}
			e.Response = resp
			return e.Clone()
		}
	}
	return nil
}

// Clear discards all captures immediately.
func (s *RequestStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]*CapturedRequest, 0, s.capacity)
}

// Count returns the number of stored captures.
func (s *RequestStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// LogStore is a fixed-capacity ring buffer of log entries with the same
// eviction behavior as RequestStore.
type LogStore struct {
	mu       sync.RWMutex
	entries  []*LogEntry
	capacity int
}

// NewLogStore creates a LogStore with the given capacity.
func NewLogStore(capacity int) *LogStore {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &LogStore{
		entries:  make([]*LogEntry, 0, capacity),
		capacity: capacity,
	}
}

// Append adds an entry, evicting the oldest at capacity.
func (s *LogStore) Append(entry *LogEntry) {
	if entry == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.capacity {
		s.entries = s.entries[1:]
	}
	s.entries = append(s.entries, entry)
}

// All returns a snapshot of every stored entry, oldest first.
func (s *LogStore) All() []*LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Recent returns the last n entries, oldest first.
func (s *LogStore) Recent(n int) []*LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]*LogEntry, n)
	copy(out, s.entries[len(s.entries)-n:])
	return out
}

// Clear discards all entries immediately.
func (s *LogStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]*LogEntry, 0, s.capacity)
}

// Count returns the number of stored entries.
func (s *LogStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
