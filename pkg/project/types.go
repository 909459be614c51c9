package project

// Config is the parsed project configuration file (edge.toml).
type Config struct {
	Name               string   `toml:"name"`
	Main               string   `toml:"main"`
	CompatibilityDate  string   `toml:"compatibility_date"`
	CompatibilityFlags []string `toml:"compatibility_flags"`

	Databases    []DatabaseConfig    `toml:"databases"`
	KVNamespaces []KVNamespaceConfig `toml:"kv_namespaces"`
	Buckets      []BucketConfig      `toml:"buckets"`
	Actors       []ActorConfig       `toml:"actors"`
	Queues       QueuesConfig        `toml:"queues"`
	Vars         map[string]string   `toml:"vars"`
}

// DatabaseConfig declares a SQL database binding.
type DatabaseConfig struct {
	Binding      string `toml:"binding"`
	DatabaseName string `toml:"database_name"`
	DatabaseID   string `toml:"database_id"`
}

// KVNamespaceConfig declares a key-value namespace binding.
type KVNamespaceConfig struct {
	Binding string `toml:"binding"`
	ID      string `toml:"id"`
}

// BucketConfig declares an object-storage bucket binding.
type BucketConfig struct {
	Binding    string `toml:"binding"`
	BucketName string `toml:"bucket_name"`
}

// ActorConfig declares a stateful-object namespace binding.
type ActorConfig struct {
	Binding   string `toml:"binding"`
	ClassName string `toml:"class_name"`
}

// QueuesConfig declares queue producers and consumers.
type QueuesConfig struct {
	Producers []QueueProducerConfig `toml:"producers"`
	Consumers []QueueConsumerConfig `toml:"consumers"`
}

// QueueProducerConfig binds a queue for sending.
type QueueProducerConfig struct {
	Binding string `toml:"binding"`
	Queue   string `toml:"queue"`
}

// QueueConsumerConfig attaches the worker as a consumer of a queue.
type QueueConsumerConfig struct {
	Queue           string `toml:"queue"`
	MaxBatchSize    int    `toml:"max_batch_size"`
	MaxBatchTimeout int    `toml:"max_batch_timeout"` // seconds
	MaxRetries      int    `toml:"max_retries"`
	DeadLetterQueue string `toml:"dead_letter_queue"`
}

// Consumer defaults applied during discovery.
const (
	DefaultMaxBatchSize    = 10
	DefaultMaxBatchTimeout = 5
	DefaultMaxRetries      = 3
)

// Bindings is the discovered binding set for a project, with consumer
// defaults filled in.
type Bindings struct {
	Name         string
	Databases    []DatabaseConfig
	KVNamespaces []KVNamespaceConfig
	Buckets      []BucketConfig
	Actors       []ActorConfig
	Queues       QueuesConfig
	Vars         map[string]string
}
