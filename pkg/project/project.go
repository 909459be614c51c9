package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Common errors for project configuration loading.
var (
	ErrFileNotFound = errors.New("project config not found")
	ErrInvalidTOML  = errors.New("invalid TOML syntax")
)

// Load reads and parses a project configuration file.
func Load(path string) (*Config, error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, full)
		}
		return nil, fmt.Errorf("reading project config: %w", err)
	}

	return Parse(data)
}

// Parse parses project configuration from TOML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTOML, err)
	}
	if cfg.Vars == nil {
		cfg.Vars = make(map[string]string)
	}
	return &cfg, nil
}

// Discover produces the binding set declared by cfg, applying consumer
// defaults. A nil cfg yields an empty binding set, so a project without a
// config file still serves. The result never has nil slices or maps, so
// callers can range without checking.
func Discover(cfg *Config) *Bindings {
	if cfg == nil {
		cfg = &Config{}
	}
	b := &Bindings{
		Name:         cfg.Name,
		Databases:    append([]DatabaseConfig(nil), cfg.Databases...),
		KVNamespaces: append([]KVNamespaceConfig(nil), cfg.KVNamespaces...),
		Buckets:      append([]BucketConfig(nil), cfg.Buckets...),
		Actors:       append([]ActorConfig(nil), cfg.Actors...),
		Queues: QueuesConfig{
			Producers: append([]QueueProducerConfig(nil), cfg.Queues.Producers...),
			Consumers: make([]QueueConsumerConfig, 0, len(cfg.Queues.Consumers)),
		},
		Vars: make(map[string]string, len(cfg.Vars)),
	}
	if b.Name == "" {
		b.Name = "worker"
	}
	if b.Databases == nil {
		b.Databases = []DatabaseConfig{}
	}
	if b.KVNamespaces == nil {
		b.KVNamespaces = []KVNamespaceConfig{}
	}
	if b.Buckets == nil {
		b.Buckets = []BucketConfig{}
	}
	if b.Actors == nil {
		b.Actors = []ActorConfig{}
	}
	if b.Queues.Producers == nil {
		b.Queues.Producers = []QueueProducerConfig{}
	}

	for _, c := range cfg.Queues.Consumers {
		if c.MaxBatchSize <= 0 {
			c.MaxBatchSize = DefaultMaxBatchSize
		}
		if c.MaxBatchTimeout <= 0 {
			c.MaxBatchTimeout = DefaultMaxBatchTimeout
		}
		if c.MaxRetries <= 0 {
			c.MaxRetries = DefaultMaxRetries
		}
		b.Queues.Consumers = append(b.Queues.Consumers, c)
	}

	for k, v := range cfg.Vars {
		b.Vars[k] = v
	}
	return b
}

// Validate checks the binding set for problems a developer should fix before
// serving: duplicate binding names and consumers of queues no producer feeds
// are reported.
func Validate(b *Bindings) []string {
	var problems []string
	seen := make(map[string]string)

	check := func(binding, kind string) {
		if binding == "" {
			problems = append(problems, fmt.Sprintf("%s binding with empty name", kind))
			return
		}
		if prev, ok := seen[binding]; ok {
			problems = append(problems, fmt.Sprintf("binding %q declared as both %s and %s", binding, prev, kind))
			return
		}
		seen[binding] = kind
	}

	for _, d := range b.Databases {
		check(d.Binding, "database")
	}
	for _, kv := range b.KVNamespaces {
		check(kv.Binding, "kv namespace")
	}
	for _, bk := range b.Buckets {
		check(bk.Binding, "bucket")
	}
	for _, a := range b.Actors {
		check(a.Binding, "actor namespace")
	}
	for _, p := range b.Queues.Producers {
		check(p.Binding, "queue producer")
	}

	produced := make(map[string]bool)
	for _, p := range b.Queues.Producers {
		produced[p.Queue] = true
	}
	for _, c := range b.Queues.Consumers {
		if !produced[c.Queue] {
			problems = append(problems, fmt.Sprintf("queue %q has a consumer but no producer binding", c.Queue))
		}
	}

	return problems
}

// Summary renders one line per non-empty binding category for CLI output.
func Summary(b *Bindings) []string {
	var lines []string

	names := func(n int, get func(int) string) string {
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			parts[i] = get(i)
		}
		return strings.Join(parts, ", ")
	}

	if len(b.Databases) > 0 {
		lines = append(lines, "Databases: "+names(len(b.Databases), func(i int) string { return b.Databases[i].Binding }))
	}
	if len(b.KVNamespaces) > 0 {
		lines = append(lines, "KV Namespaces: "+names(len(b.KVNamespaces), func(i int) string { return b.KVNamespaces[i].Binding }))
	}
	if len(b.Buckets) > 0 {
		lines = append(lines, "Buckets: "+names(len(b.Buckets), func(i int) string { return b.Buckets[i].Binding }))
	}
	if len(b.Actors) > 0 {
		lines = append(lines, "Actors: "+names(len(b.Actors), func(i int) string { return b.Actors[i].Binding }))
	}
	if len(b.Queues.Producers) > 0 {
		lines = append(lines, "Queue Producers: "+names(len(b.Queues.Producers), func(i int) string { return b.Queues.Producers[i].Binding }))
	}
	if len(b.Queues.Consumers) > 0 {
		lines = append(lines, "Queue Consumers: "+names(len(b.Queues.Consumers), func(i int) string { return b.Queues.Consumers[i].Queue }))
	}
	if len(b.Vars) > 0 {
		keys := make([]string, 0, len(b.Vars))
		for k := range b.Vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines = append(lines, "Variables: "+strings.Join(keys, ", "))
	}

	return lines
}
