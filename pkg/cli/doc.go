// Package cli implements the edgedeck command-line interface: serving the
// proxy and dashboard, project scaffolding and validation, and terminal
// access to captured logs and requests over the dashboard API.
package cli
