// Package notifications carries ingestion lifecycle events from the core to
// whatever transport drains them. The Hub is a bounded queue with subscriber
// fan-out; publishing never blocks a watcher or the router, and a saturated
// queue drops events instead of stalling ingestion.
package notifications
