// Package router resolves routing rules and moves claimed screenshots to
// their destinations. Moves are rename-first with a copy fallback across
// filesystems, and record state only advances after the file is in place.
package router
