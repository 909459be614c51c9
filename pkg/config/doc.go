// Package config provides the server configuration for edgedeck: proxy and
// upstream addresses, capture limits, project discovery, and logging. Config
// files may be YAML or JSON, detected by extension, and every field has a
// usable default so a missing file is not an error for callers that opt into
// defaults.
package config
