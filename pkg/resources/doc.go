// Package resources emulates the platform bindings a worker project declares:
// SQL databases backed by SQLite files, in-memory key-value namespaces with
// expiration and metadata, filesystem-backed storage buckets, message queues
// with batched delivery and dead-letter routing, and stateful-object (actor)
// namespaces. The Registry wires one emulator per declared binding and is the
// single handle the dashboard API serves from.
//
// Database and bucket state lives under the data directory and survives
// restarts. KV, queue, and actor state is process-local.
package resources
