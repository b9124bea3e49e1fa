// Package daemon composes the record store, notification hub, router, watch
// manager, and HTTP API into a single lifecycle with flock-based locking to
// prevent multiple concurrent instances.
package daemon
