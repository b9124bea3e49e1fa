// Package watcher ingests screenshots from watched directories. A file is
// ingested once it settles (its size holds steady through a debounce window)
// and this process wins the claim rename; only then does a record exist.
// The Manager deduplicates watchers by canonical directory path.
package watcher
