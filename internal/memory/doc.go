// Package memory configures the Go soft memory limit from container
// resource limits so the runtime leaves headroom for the SQLite page
// cache and tag-scanning buffers.
package memory
