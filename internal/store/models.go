package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a screenshot record.
type Status string

const (
	StatusInbox       Status = "inbox"
	StatusRouted      Status = "routed"
	StatusQuarantined Status = "quarantined"
)

var allStatuses = []Status{StatusInbox, StatusRouted, StatusQuarantined}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the record lifecycle. Inbox is the
// only state a record can leave.
func (s Status) IsTerminal() bool {
	return s == StatusRouted || s == StatusQuarantined
}

// Record is one ingested screenshot persisted in SQLite. SourcePath is the
// claimed path at ingestion time and never changes; DestPath is set exactly
// when Status becomes routed.
type Record struct {
	ID         string
	SourcePath string
	DestPath   string
	Status     Status
	Size       int64
	CreatedAt  time.Time
	MovedAt    *time.Time
}

// Destination is a configured output root. Path is the unique key; TargetDir
// is the relative subdirectory files land in. Name and Icon are display
// metadata only.
type Destination struct {
	ID        string
	Path      string
	TargetDir string
	Name      string
	Icon      string
	CreatedAt time.Time
}

// Route maps a watched source directory to a destination path. Lower priority
// wins; inactive routes are skipped during resolution. DestPath is a raw path
// on purpose: deleting the Destination row does not invalidate the route.
type Route struct {
	ID         string
	SourcePath string
	DestPath   string
	Priority   int
	Active     bool
	CreatedAt  time.Time
}
