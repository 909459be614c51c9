package resources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/edgedeck/edgedeck/pkg/project"
	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

// ErrBindingNotFound is returned for an unknown binding name.
var ErrBindingNotFound = errors.New("binding not found")

// Headers set on actor fetches forwarded to the worker runtime.
const (
	ActorBindingHeader = "X-Edgedeck-Actor-Binding"
	ActorIDHeader      = "X-Edgedeck-Actor-Id"
)

// Registry holds one emulator per binding a project declares. It is built
// once from the discovered binding set and shared by the dashboard API.
type Registry struct {
	bindings *project.Bindings

	databases *DatabaseManager
	kv        map[string]*KVNamespace
	buckets   map[string]*Bucket
	broker    *Broker
	actors    map[string]*ActorNamespace

	delivery DeliveryFunc
	upstream *url.URL
	client   *http.Client
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithUpstream sets the worker runtime URL actor fetches are forwarded to.
func WithUpstream(u *url.URL) RegistryOption {
	return func(r *Registry) { r.upstream = u }
}

// WithHTTPClient overrides the client used for actor fetch forwarding.
func WithHTTPClient(c *http.Client) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.client = c
		}
	}
}

// WithDelivery sets the queue batch delivery function.
func WithDelivery(d DeliveryFunc) RegistryOption {
	return func(r *Registry) { r.delivery = d }
}

// NewRegistry builds emulators for every binding in b. Database files and
// bucket objects live under dataDir; queue deliveries report into hub.
func NewRegistry(b *project.Bindings, dataDir string, hub *telemetry.Hub, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		bindings: b,
		kv:       make(map[string]*KVNamespace),
		buckets:  make(map[string]*Bucket),
		actors:   make(map[string]*ActorNamespace),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}

	r.databases = NewDatabaseManager(dataDir)
	for _, d := range b.Databases {
		r.databases.Register(d.Binding, d.DatabaseName)
	}

	for _, kv := range b.KVNamespaces {
		r.kv[kv.Binding] = NewKVNamespace(kv.Binding)
	}

	for _, bk := range b.Buckets {
		bucket, err := NewBucket(bk.Binding, bk.BucketName, dataDir)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", bk.Binding, err)
		}
		r.buckets[bk.Binding] = bucket
	}

	r.broker = NewBroker(hub, r.delivery)
	for _, c := range b.Queues.Consumers {
		r.broker.AddConsumer(c)
	}

	for _, a := range b.Actors {
		r.actors[a.Binding] = NewActorNamespace(a.Binding, a.ClassName)
	}

	return r, nil
}

// Bindings returns the discovered binding set the registry was built from.
func (r *Registry) Bindings() *project.Bindings { return r.bindings }

// Databases returns the database manager.
func (r *Registry) Databases() *DatabaseManager { return r.databases }

// Broker returns the queue broker.
func (r *Registry) Broker() *Broker { return r.broker }

// KV returns the namespace for a binding.
func (r *Registry) KV(binding string) (*KVNamespace, error) {
	ns, ok := r.kv[binding]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBindingNotFound, binding)
	}
	return ns, nil
}

// KVBindings returns all KV binding names, sorted.
func (r *Registry) KVBindings() []string {
	names := make([]string, 0, len(r.kv))
	for b := range r.kv {
		names = append(names, b)
	}
	sort.Strings(names)
	return names
}

// Bucket returns the bucket for a binding.
func (r *Registry) Bucket(binding string) (*Bucket, error) {
	b, ok := r.buckets[binding]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBindingNotFound, binding)
	}
	return b, nil
}

// BucketBindings returns all bucket binding names, sorted.
func (r *Registry) BucketBindings() []string {
	names := make([]string, 0, len(r.buckets))
	for b := range r.buckets {
		names = append(names, b)
	}
	sort.Strings(names)
	return names
}

// Actors returns the actor namespace for a binding.
func (r *Registry) Actors(binding string) (*ActorNamespace, error) {
	ns, ok := r.actors[binding]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBindingNotFound, binding)
	}
	return ns, nil
}

// ActorBindings returns all actor binding names, sorted.
func (r *Registry) ActorBindings() []string {
	names := make([]string, 0, len(r.actors))
	for b := range r.actors {
		names = append(names, b)
	}
	sort.Strings(names)
	return names
}

// ActorFetch forwards a request to the worker runtime addressed to one actor
// instance. The instance is created on first access so its storage is
// enumerable afterwards.
func (r *Registry) ActorFetch(ctx context.Context, binding, instanceID, method, path string, body io.Reader) (*http.Response, error) {
	ns, err := r.Actors(binding)
	if err != nil {
		return nil, err
	}
	if r.upstream == nil {
		return nil, errors.New("no upstream configured for actor fetch")
	}
	ns.Get(instanceID)

	target := *r.upstream
	target.Path = path
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building actor fetch request: %w", err)
	}
	req.Header.Set(ActorBindingHeader, binding)
	req.Header.Set(ActorIDHeader, instanceID)

	return r.client.Do(req)
}

// Close shuts down the queue workers and database connections.
func (r *Registry) Close() error {
	r.broker.Close()
	return r.databases.Close()
}
