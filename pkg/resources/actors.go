package resources

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrInstanceNotFound is returned for an unknown actor instance id.
var ErrInstanceNotFound = errors.New("actor instance not found")

// ActorNamespace holds the instances of one stateful-object class. Instances
// are created on first access: an id derived from a name is stable, a unique
// id is random, and each instance carries its own key-value storage.
type ActorNamespace struct {
	binding   string
	className string

	mu        sync.RWMutex
	instances map[string]*ActorInstance
}

// ActorInstance is one live stateful object.
type ActorInstance struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	mu      sync.RWMutex
	storage map[string]any
}

// NewActorNamespace creates an empty namespace for a binding and class.
func NewActorNamespace(binding, className string) *ActorNamespace {
	return &ActorNamespace{
		binding:   binding,
		className: className,
		instances: make(map[string]*ActorInstance),
	}
}

// Binding returns the binding name this namespace serves.
func (ns *ActorNamespace) Binding() string { return ns.binding }

// ClassName returns the stateful-object class name.
func (ns *ActorNamespace) ClassName() string { return ns.className }

// IDFromName derives the stable instance id for a name. The same name in the
// same namespace always yields the same id.
func (ns *ActorNamespace) IDFromName(name string) string {
	sum := sha256.Sum256([]byte(ns.binding + "/" + ns.className + "/" + name))
	return hex.EncodeToString(sum[:])
}

// NewUniqueID mints a random instance id.
func (ns *ActorNamespace) NewUniqueID() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// GetByName returns the instance for a name, creating it on first access.
func (ns *ActorNamespace) GetByName(name string) *ActorInstance {
	return ns.get(ns.IDFromName(name), name)
}

// Get returns the instance for an id, creating it on first access.
func (ns *ActorNamespace) Get(id string) *ActorInstance {
	return ns.get(id, "")
}

// Lookup returns an existing instance without creating one.
func (ns *ActorNamespace) Lookup(id string) (*ActorInstance, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	inst, ok := ns.instances[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}
	return inst, nil
}

// Instances enumerates all live instances, sorted by creation time then id.
func (ns *ActorNamespace) Instances() []*ActorInstance {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	out := make([]*ActorInstance, 0, len(ns.instances))
	for _, inst := range ns.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of live instances.
func (ns *ActorNamespace) Count() int {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return len(ns.instances)
}

func (ns *ActorNamespace) get(id, name string) *ActorInstance {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	inst, ok := ns.instances[id]
	if !ok {
		inst = &ActorInstance{
			ID:        id,
			Name:      name,
			CreatedAt: time.Now(),
			storage:   make(map[string]any),
		}
		ns.instances[id] = inst
	}
	return inst
}

// StoragePut stores a value in the instance's storage.
func (a *ActorInstance) StoragePut(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.storage[key] = value
}

// StorageGet returns a stored value and whether it exists.
func (a *ActorInstance) StorageGet(key string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.storage[key]
	return v, ok
}

// StorageDelete removes a key from the instance's storage.
func (a *ActorInstance) StorageDelete(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.storage, key)
}

// StorageList returns a snapshot of the instance's storage, keys sorted.
func (a *ActorInstance) StorageList() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[string]any, len(a.storage))
	for k, v := range a.storage {
		out[k] = v
	}
	return out
}
