package resources

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/edgedeck/edgedeck/pkg/project"
	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

func testBindings() *project.Bindings {
	return project.Discover(&project.Config{
		Name:         "demo",
		Databases:    []project.DatabaseConfig{{Binding: "DB", DatabaseName: "app"}},
		KVNamespaces: []project.KVNamespaceConfig{{Binding: "CACHE"}},
		Buckets:      []project.BucketConfig{{Binding: "ASSETS", BucketName: "assets"}},
		Actors:       []project.ActorConfig{{Binding: "COUNTER", ClassName: "Counter"}},
		Queues: project.QueuesConfig{
			Producers: []project.QueueProducerConfig{{Binding: "JOBS", Queue: "jobs"}},
			Consumers: []project.QueueConsumerConfig{{Queue: "jobs"}},
		},
	})
}

func newTestRegistry(t *testing.T, opts ...RegistryOption) *Registry {
	t.Helper()
	hub := telemetry.NewHub()
	r, err := NewRegistry(testBindings(), t.TempDir(), hub, opts...)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRegistryWiresAllBindings(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.KV("CACHE"); err != nil {
		t.Errorf("KV binding missing: %v", err)
	}
	if _, err := r.Bucket("ASSETS"); err != nil {
		t.Errorf("bucket binding missing: %v", err)
	}
	if _, err := r.Actors("COUNTER"); err != nil {
		t.Errorf("actor binding missing: %v", err)
	}
	if got := r.Databases().Bindings(); len(got) != 1 || got[0] != "DB" {
		t.Errorf("database bindings = %v", got)
	}
	if _, err := r.Databases().Query(context.Background(), "DB", "SELECT 1"); err != nil {
		t.Errorf("database not usable: %v", err)
	}
}

func TestRegistryUnknownBinding(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.KV("NOPE"); !errors.Is(err, ErrBindingNotFound) {
		t.Errorf("KV err = %v, want ErrBindingNotFound", err)
	}
	if _, err := r.Bucket("NOPE"); !errors.Is(err, ErrBindingNotFound) {
		t.Errorf("Bucket err = %v, want ErrBindingNotFound", err)
	}
	if _, err := r.Actors("NOPE"); !errors.Is(err, ErrBindingNotFound) {
		t.Errorf("Actors err = %v, want ErrBindingNotFound", err)
	}
}

func TestRegistryBindingNames(t *testing.T) {
	r := newTestRegistry(t)

	if got := r.KVBindings(); len(got) != 1 || got[0] != "CACHE" {
		t.Errorf("KVBindings = %v", got)
	}
	if got := r.BucketBindings(); len(got) != 1 || got[0] != "ASSETS" {
		t.Errorf("BucketBindings = %v", got)
	}
	if got := r.ActorBindings(); len(got) != 1 || got[0] != "COUNTER" {
		t.Errorf("ActorBindings = %v", got)
	}
}

func TestRegistryActorFetch(t *testing.T) {
	var gotBinding, gotID string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotBinding = req.Header.Get(ActorBindingHeader)
		gotID = req.Header.Get(ActorIDHeader)
		_, _ = io.WriteString(w, "from actor")
	}))
	defer upstream.Close()

	u, _ := url.Parse(upstream.URL)
	r := newTestRegistry(t, WithUpstream(u))

	ns, _ := r.Actors("COUNTER")
	instanceID := ns.IDFromName("room-1")

	resp, err := r.ActorFetch(context.Background(), "COUNTER", instanceID, http.MethodPost, "/increment", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("ActorFetch failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "from actor" {
		t.Errorf("body = %q", body)
	}
	if gotBinding != "COUNTER" || gotID != instanceID {
		t.Errorf("headers = %q, %q", gotBinding, gotID)
	}
	if ns.Count() != 1 {
		t.Error("fetch should create the instance")
	}
}

func TestRegistryActorFetchNoUpstream(t *testing.T) {
	r := newTestRegistry(t)
	ns, _ := r.Actors("COUNTER")
	if _, err := r.ActorFetch(context.Background(), "COUNTER", ns.NewUniqueID(), http.MethodGet, "/", nil); err == nil {
		t.Error("fetch without upstream should fail")
	}
}
