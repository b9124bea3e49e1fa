package api

import (
	"time"

	"shotrouter/internal/store"
	"shotrouter/internal/watcher"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(dateTimeFormat)
}

// FromRecord converts a store record to its API shape.
func FromRecord(record *store.Record) Screenshot {
	if record == nil {
		return Screenshot{}
	}
	out := Screenshot{
		ID:         record.ID,
		SourcePath: record.SourcePath,
		DestPath:   record.DestPath,
		Status:     string(record.Status),
		Size:       record.Size,
		CreatedAt:  formatTimestamp(record.CreatedAt),
	}
	if record.MovedAt != nil {
		out.MovedAt = formatTimestamp(*record.MovedAt)
	}
	return out
}

// FromRecords converts a slice of store records.
func FromRecords(records []*store.Record) []Screenshot {
	if len(records) == 0 {
		return nil
	}
	out := make([]Screenshot, 0, len(records))
	for _, record := range records {
		out = append(out, FromRecord(record))
	}
	return out
}

// FromDestination converts a store destination to its API shape.
func FromDestination(dest *store.Destination) Destination {
	if dest == nil {
		return Destination{}
	}
	return Destination{
		ID:        dest.ID,
		Path:      dest.Path,
		TargetDir: dest.TargetDir,
		Name:      dest.Name,
		Icon:      dest.Icon,
		CreatedAt: formatTimestamp(dest.CreatedAt),
	}
}

// FromDestinations converts a slice of store destinations.
func FromDestinations(dests []*store.Destination) []Destination {
	if len(dests) == 0 {
		return nil
	}
	out := make([]Destination, 0, len(dests))
	for _, dest := range dests {
		out = append(out, FromDestination(dest))
	}
	return out
}

// FromRoute converts a store route to its API shape.
func FromRoute(route *store.Route) Route {
	if route == nil {
		return Route{}
	}
	return Route{
		ID:         route.ID,
		SourcePath: route.SourcePath,
		DestPath:   route.DestPath,
		Priority:   route.Priority,
		Active:     route.Active,
		CreatedAt:  formatTimestamp(route.CreatedAt),
	}
}

// FromRoutes converts a slice of store routes.
func FromRoutes(routes []*store.Route) []Route {
	if len(routes) == 0 {
		return nil
	}
	out := make([]Route, 0, len(routes))
	for _, route := range routes {
		out = append(out, FromRoute(route))
	}
	return out
}

// FromWatch converts a manager watch entry to its API shape.
func FromWatch(watch watcher.ActiveWatch) Source {
	return Source{
		Path:       watch.Path,
		DebounceMs: watch.DebounceMs,
		Running:    watch.Running,
	}
}

// FromWatches converts a slice of manager watch entries.
func FromWatches(watches []watcher.ActiveWatch) []Source {
	if len(watches) == 0 {
		return nil
	}
	out := make([]Source, 0, len(watches))
	for _, watch := range watches {
		out = append(out, FromWatch(watch))
	}
	return out
}

// MergeStats converts store status counts to string keys, ensuring all known
// statuses appear even when zero.
func MergeStats(stats map[store.Status]int) map[string]int {
	out := map[string]int{
		string(store.StatusInbox):       0,
		string(store.StatusRouted):      0,
		string(store.StatusQuarantined): 0,
	}
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}
