package project

import (
	"sort"
	"strings"
)

// Manifest is the binding inventory served to the dashboard at /bindings.
// Secret-looking variables are masked before they leave the process.
type Manifest struct {
	Name     string           `json:"name"`
	Bindings ManifestBindings `json:"bindings"`
}

// ManifestBindings groups the declared bindings by resource kind.
type ManifestBindings struct {
	Databases    []ManifestDatabase    `json:"databases"`
	KVNamespaces []ManifestKVNamespace `json:"kv"`
	Buckets      []ManifestBucket      `json:"buckets"`
	Actors       []ManifestActor       `json:"actors"`
	Queues       ManifestQueues        `json:"queues"`
	Vars         []ManifestVar         `json:"vars"`
}

// ManifestDatabase describes a database binding.
type ManifestDatabase struct {
	Type         string `json:"type"`
	Binding      string `json:"binding"`
	DatabaseName string `json:"database_name"`
}

// ManifestKVNamespace describes a key-value namespace binding.
type ManifestKVNamespace struct {
	Type    string `json:"type"`
	Binding string `json:"binding"`
}

// ManifestBucket describes an object-storage bucket binding.
type ManifestBucket struct {
	Type       string `json:"type"`
	Binding    string `json:"binding"`
	BucketName string `json:"bucket_name"`
}

// ManifestActor describes a stateful-object namespace binding.
type ManifestActor struct {
	Type      string `json:"type"`
	Binding   string `json:"binding"`
	ClassName string `json:"class_name"`
}

// ManifestQueues describes queue producers and consumers.
type ManifestQueues struct {
	Producers []ManifestQueueProducer `json:"producers"`
	Consumers []ManifestQueueConsumer `json:"consumers"`
}

// ManifestQueueProducer describes a queue producer binding.
type ManifestQueueProducer struct {
	Type    string `json:"type"`
	Binding string `json:"binding"`
	Queue   string `json:"queue"`
}

// ManifestQueueConsumer describes a queue consumer attachment.
type ManifestQueueConsumer struct {
	Type            string `json:"type"`
	Queue           string `json:"queue"`
	MaxBatchSize    int    `json:"max_batch_size"`
	MaxBatchTimeout int    `json:"max_batch_timeout"`
	MaxRetries      int    `json:"max_retries"`
	DeadLetterQueue string `json:"dead_letter_queue,omitempty"`
}

// ManifestVar describes a plain variable. Secret values are masked.
type ManifestVar struct {
	Type     string `json:"type"`
	Key      string `json:"key"`
	Value    string `json:"value"`
	IsSecret bool   `json:"isSecret"`
}

const maskedValue = "••••••••"

// BuildManifest converts a discovered binding set into the dashboard
// manifest. Every slice is non-nil so the JSON always carries arrays.
func BuildManifest(b *Bindings) *Manifest {
	m := &Manifest{
		Name: b.Name,
		Bindings: ManifestBindings{
			Databases:    make([]ManifestDatabase, 0, len(b.Databases)),
			KVNamespaces: make([]ManifestKVNamespace, 0, len(b.KVNamespaces)),
			Buckets:      make([]ManifestBucket, 0, len(b.Buckets)),
			Actors:       make([]ManifestActor, 0, len(b.Actors)),
			Queues: ManifestQueues{
				Producers: make([]ManifestQueueProducer, 0, len(b.Queues.Producers)),
				Consumers: make([]ManifestQueueConsumer, 0, len(b.Queues.Consumers)),
			},
			Vars: make([]ManifestVar, 0, len(b.Vars)),
		},
	}

	for _, d := range b.Databases {
		m.Bindings.Databases = append(m.Bindings.Databases, ManifestDatabase{
			Type: "database", Binding: d.Binding, DatabaseName: d.DatabaseName,
		})
	}
	for _, kv := range b.KVNamespaces {
		m.Bindings.KVNamespaces = append(m.Bindings.KVNamespaces, ManifestKVNamespace{
			Type: "kv", Binding: kv.Binding,
		})
	}
	for _, bk := range b.Buckets {
		m.Bindings.Buckets = append(m.Bindings.Buckets, ManifestBucket{
			Type: "bucket", Binding: bk.Binding, BucketName: bk.BucketName,
		})
	}
	for _, a := range b.Actors {
		m.Bindings.Actors = append(m.Bindings.Actors, ManifestActor{
			Type: "actor", Binding: a.Binding, ClassName: a.ClassName,
		})
	}
	for _, p := range b.Queues.Producers {
		m.Bindings.Queues.Producers = append(m.Bindings.Queues.Producers, ManifestQueueProducer{
			Type: "queue_producer", Binding: p.Binding, Queue: p.Queue,
		})
	}
	for _, c := range b.Queues.Consumers {
		m.Bindings.Queues.Consumers = append(m.Bindings.Queues.Consumers, ManifestQueueConsumer{
			Type:            "queue_consumer",
			Queue:           c.Queue,
			MaxBatchSize:    c.MaxBatchSize,
			MaxBatchTimeout: c.MaxBatchTimeout,
			MaxRetries:      c.MaxRetries,
			DeadLetterQueue: c.DeadLetterQueue,
		})
	}
	for k, v := range b.Vars {
		mv := ManifestVar{Type: "var", Key: k, Value: v, IsSecret: secretVar(k)}
		if mv.IsSecret {
			mv.Value = maskedValue
		}
		m.Bindings.Vars = append(m.Bindings.Vars, mv)
	}
	sortVars(m.Bindings.Vars)

	return m
}

// secretVar guesses whether a variable holds a secret from its name.
func secretVar(key string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range []string{"SECRET", "TOKEN", "KEY", "PASSWORD", "CREDENTIAL"} {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

func sortVars(vars []ManifestVar) {
	sort.Slice(vars, func(i, j int) bool { return vars[i].Key < vars[j].Key })
}
