// Package store persists screenshot records, destinations, and routing rules
// in SQLite and is the single source of truth for their lifecycle.
//
// Records move monotonically from inbox to routed or quarantined; dest_path
// is set exactly when a record becomes routed. All writes go through a single
// pooled connection so concurrent watchers serialize without additional
// locking. Schema changes bump the version in schema.go.
package store
