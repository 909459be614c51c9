package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
name = "demo-worker"
main = "src/index.ts"
compatibility_date = "2026-01-01"

[vars]
API_URL = "https://api.example.com"
API_TOKEN = "hunter2"

[[databases]]
binding = "DB"
database_name = "app"
database_id = "db-1"

[[kv_namespaces]]
binding = "CACHE"
id = "kv-1"

[[buckets]]
binding = "ASSETS"
bucket_name = "assets"

[[actors]]
binding = "COUNTER"
class_name = "Counter"

[[queues.producers]]
binding = "JOBS"
queue = "jobs"

[[queues.consumers]]
queue = "jobs"
max_batch_size = 25
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "demo-worker", cfg.Name)
	assert.Equal(t, "src/index.ts", cfg.Main)
	require.Len(t, cfg.Databases, 1)
	assert.Equal(t, "DB", cfg.Databases[0].Binding)
	assert.Equal(t, "app", cfg.Databases[0].DatabaseName)
	require.Len(t, cfg.KVNamespaces, 1)
	require.Len(t, cfg.Buckets, 1)
	require.Len(t, cfg.Actors, 1)
	assert.Equal(t, "Counter", cfg.Actors[0].ClassName)
	require.Len(t, cfg.Queues.Producers, 1)
	require.Len(t, cfg.Queues.Consumers, 1)
	assert.Equal(t, "https://api.example.com", cfg.Vars["API_URL"])
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("name = [broken"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTOML)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edge.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo-worker", cfg.Name)
}

func TestDiscoverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	b := Discover(cfg)

	require.Len(t, b.Queues.Consumers, 1)
	c := b.Queues.Consumers[0]
	assert.Equal(t, 25, c.MaxBatchSize, "explicit value kept")
	assert.Equal(t, DefaultMaxBatchTimeout, c.MaxBatchTimeout, "default applied")
	assert.Equal(t, DefaultMaxRetries, c.MaxRetries, "default applied")
}

func TestDiscoverEmptyConfig(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)

	b := Discover(cfg)
	assert.Equal(t, "worker", b.Name)
	assert.NotNil(t, b.Databases)
	assert.NotNil(t, b.KVNamespaces)
	assert.NotNil(t, b.Buckets)
	assert.NotNil(t, b.Actors)
	assert.NotNil(t, b.Queues.Producers)
	assert.NotNil(t, b.Queues.Consumers)
	assert.NotNil(t, b.Vars)
}

func TestDiscoverNilConfig(t *testing.T) {
	// Serving without a project file discovers against a nil config; the
	// result is a bindings-free set with defaults, not a panic.
	b := Discover(nil)

	assert.Equal(t, "worker", b.Name)
	assert.Empty(t, b.Databases)
	assert.Empty(t, b.KVNamespaces)
	assert.Empty(t, b.Buckets)
	assert.Empty(t, b.Actors)
	assert.Empty(t, b.Queues.Producers)
	assert.Empty(t, b.Queues.Consumers)
	assert.NotNil(t, b.Databases)
	assert.NotNil(t, b.KVNamespaces)
	assert.NotNil(t, b.Buckets)
	assert.NotNil(t, b.Actors)
	assert.NotNil(t, b.Queues.Producers)
	assert.NotNil(t, b.Queues.Consumers)
	assert.NotNil(t, b.Vars)
	assert.Empty(t, Validate(b))
}

func TestValidateDuplicateBindings(t *testing.T) {
	b := Discover(&Config{
		Databases:    []DatabaseConfig{{Binding: "X", DatabaseName: "a"}},
		KVNamespaces: []KVNamespaceConfig{{Binding: "X"}},
	})

	problems := Validate(b)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], `"X"`)
}

func TestValidateOrphanConsumer(t *testing.T) {
	b := Discover(&Config{
		Queues: QueuesConfig{
			Consumers: []QueueConsumerConfig{{Queue: "orphaned"}},
		},
	})

	problems := Validate(b)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "orphaned")
}

func TestValidateClean(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Empty(t, Validate(Discover(cfg)))
}

func TestSummary(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	lines := Summary(Discover(cfg))
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Databases: DB")
	assert.Contains(t, joined, "KV Namespaces: CACHE")
	assert.Contains(t, joined, "Buckets: ASSETS")
	assert.Contains(t, joined, "Actors: COUNTER")
	assert.Contains(t, joined, "Queue Producers: JOBS")
	assert.Contains(t, joined, "Queue Consumers: jobs")
	assert.Contains(t, joined, "Variables: API_TOKEN, API_URL")
}

func TestBuildManifest(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	m := BuildManifest(Discover(cfg))
	assert.Equal(t, "demo-worker", m.Name)
	require.Len(t, m.Bindings.Databases, 1)
	assert.Equal(t, "database", m.Bindings.Databases[0].Type)
	require.Len(t, m.Bindings.Queues.Consumers, 1)
	assert.Equal(t, 25, m.Bindings.Queues.Consumers[0].MaxBatchSize)

	// Secret-looking vars are masked, plain vars are not.
	require.Len(t, m.Bindings.Vars, 2)
	byKey := map[string]ManifestVar{}
	for _, v := range m.Bindings.Vars {
		byKey[v.Key] = v
	}
	assert.True(t, byKey["API_TOKEN"].IsSecret)
	assert.NotEqual(t, "hunter2", byKey["API_TOKEN"].Value)
	assert.False(t, byKey["API_URL"].IsSecret)
	assert.Equal(t, "https://api.example.com", byKey["API_URL"].Value)
}

func TestBuildManifestEmpty(t *testing.T) {
	m := BuildManifest(Discover(&Config{}))
	assert.Equal(t, "worker", m.Name)
	assert.NotNil(t, m.Bindings.Databases)
	assert.NotNil(t, m.Bindings.Vars)
}
