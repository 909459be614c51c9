package resources

import (
	"encoding/base64"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrKeyNotFound is returned when a KV key does not exist or has expired.
var ErrKeyNotFound = errors.New("key not found")

// DefaultListLimit caps one page of KV list results.
const DefaultListLimit = 1000

// KVNamespace is an in-memory key-value namespace with optional per-key
// expiration and metadata. All methods are safe for concurrent use.
type KVNamespace struct {
	binding string

	mu      sync.RWMutex
	entries map[string]*kvEntry
}

type kvEntry struct {
	value     []byte
	metadata  any
	expiresAt time.Time // zero means no expiration
}

// KVPutOptions controls expiration and metadata for a put.
type KVPutOptions struct {
	// ExpirationTTL is seconds from now until the key expires. Zero means
	// no TTL.
	ExpirationTTL int64
	// Expiration is an absolute unix timestamp. Ignored when ExpirationTTL
	// is set.
	Expiration int64
	// Metadata is stored alongside the value and returned on get and list.
	Metadata any
}

// KVKey describes one key in a list page.
type KVKey struct {
	Name       string `json:"name"`
	Expiration int64  `json:"expiration,omitempty"`
	Metadata   any    `json:"metadata,omitempty"`
}

// KVListOptions selects a page of keys.
type KVListOptions struct {
	Prefix string
	Cursor string
	Limit  int
}

// KVListResult is one page of keys in lexicographic order.
type KVListResult struct {
	Keys         []KVKey `json:"keys"`
	ListComplete bool    `json:"list_complete"`
	Cursor       string  `json:"cursor,omitempty"`
}

// NewKVNamespace creates an empty namespace for the given binding name.
func NewKVNamespace(binding string) *KVNamespace {
	return &KVNamespace{
		binding: binding,
		entries: make(map[string]*kvEntry),
	}
}

// Binding returns the binding name this namespace serves.
func (kv *KVNamespace) Binding() string { return kv.binding }

// Put stores a value under key, replacing any existing entry.
func (kv *KVNamespace) Put(key string, value []byte, opts KVPutOptions) {
	e := &kvEntry{
		value:    append([]byte(nil), value...),
		metadata: opts.Metadata,
	}
	if opts.ExpirationTTL > 0 {
		e.expiresAt = time.Now().Add(time.Duration(opts.ExpirationTTL) * time.Second)
	} else if opts.Expiration > 0 {
		e.expiresAt = time.Unix(opts.Expiration, 0)
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.entries[key] = e
}

// Get returns the value and metadata for key. Expired keys are removed on
// access and reported as missing.
func (kv *KVNamespace) Get(key string) ([]byte, any, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	e, ok := kv.entries[key]
	if !ok {
		return nil, nil, ErrKeyNotFound
	}
	if e.expired(time.Now()) {
		delete(kv.entries, key)
		return nil, nil, ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), e.metadata, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (kv *KVNamespace) Delete(key string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.entries, key)
}

// List returns one page of keys matching the options, sorted by name.
// The cursor from a partial page resumes listing after the last key returned.
func (kv *KVNamespace) List(opts KVListOptions) *KVListResult {
	limit := opts.Limit
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	after := decodeCursor(opts.Cursor)
	now := time.Now()

	kv.mu.Lock()
	defer kv.mu.Unlock()

	names := make([]string, 0, len(kv.entries))
	for name, e := range kv.entries {
		if e.expired(now) {
			delete(kv.entries, name)
			continue
		}
		if opts.Prefix != "" && len(name) < len(opts.Prefix) {
			continue
		}
		if opts.Prefix != "" && name[:len(opts.Prefix)] != opts.Prefix {
			continue
		}
		if after != "" && name <= after {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	result := &KVListResult{Keys: make([]KVKey, 0, min(limit, len(names))), ListComplete: true}
	for i, name := range names {
		if i == limit {
			result.ListComplete = false
			result.Cursor = encodeCursor(names[i-1])
			break
		}
		e := kv.entries[name]
		k := KVKey{Name: name, Metadata: e.metadata}
		if !e.expiresAt.IsZero() {
			k.Expiration = e.expiresAt.Unix()
		}
		result.Keys = append(result.Keys, k)
	}
	return result
}

// Count returns the number of live keys.
func (kv *KVNamespace) Count() int {
	now := time.Now()

	kv.mu.RLock()
	defer kv.mu.RUnlock()

	n := 0
	for _, e := range kv.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

func (e *kvEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cursors are opaque to callers; internally they name the last key returned.
func encodeCursor(lastKey string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(lastKey))
}

func decodeCursor(cursor string) string {
	if cursor == "" {
		return ""
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return ""
	}
	return string(b)
}
