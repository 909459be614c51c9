// Package project parses a project's edge.toml configuration and discovers
// the resource bindings it declares: databases, key-value namespaces, storage
// buckets, message queues, stateful-object (actor) namespaces, and plain
// variables. Discovery is an explicit typed step over the parsed file; there
// is no runtime shape inspection of binding values.
package project
