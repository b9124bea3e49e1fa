package api

import "shotrouter/internal/notifications"

// Screenshot describes a screenshot record in a transport-friendly format.
type Screenshot struct {
	ID         string `json:"id"`
	SourcePath string `json:"source_path"`
	DestPath   string `json:"dest_path,omitempty"`
	Status     string `json:"status"`
	Size       int64  `json:"size"`
	CreatedAt  string `json:"created_at,omitempty"`
	MovedAt    string `json:"moved_at,omitempty"`
}

// Destination describes a registered routing destination.
type Destination struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	TargetDir string `json:"target_dir,omitempty"`
	Name      string `json:"name,omitempty"`
	Icon      string `json:"icon,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Route describes a routing rule.
type Route struct {
	ID         string `json:"id"`
	SourcePath string `json:"source_path"`
	DestPath   string `json:"dest_path"`
	Priority   int    `json:"priority"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// Source describes one watched directory and its liveness.
type Source struct {
	Path       string `json:"path"`
	DebounceMs int    `json:"debounce_ms"`
	Running    bool   `json:"running"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DBPath       string         `json:"db_path,omitempty"`
	LockFilePath string         `json:"lock_file_path"`
	Sources      []Source       `json:"sources"`
	Counts       map[string]int `json:"counts"`
}

// ScreenshotListResponse wraps a collection of screenshot records.
type ScreenshotListResponse struct {
	Items []Screenshot `json:"items"`
}

// ScreenshotResponse wraps a single screenshot record.
type ScreenshotResponse struct {
	Item Screenshot `json:"item"`
}

// DestinationListResponse wraps a collection of destinations.
type DestinationListResponse struct {
	Items []Destination `json:"items"`
}

// DestinationResponse wraps a single destination.
type DestinationResponse struct {
	Item Destination `json:"item"`
}

// RouteListResponse wraps a collection of routes.
type RouteListResponse struct {
	Items []Route `json:"items"`
}

// RouteResponse wraps a single route.
type RouteResponse struct {
	Item Route `json:"item"`
}

// SourceListResponse wraps the active watcher list.
type SourceListResponse struct {
	Items []Source `json:"items"`
}

// EventsResponse carries buffered notification events plus the cursor for
// the next poll.
type EventsResponse struct {
	Events []notifications.Envelope `json:"events"`
	Next   uint64                   `json:"next"`
}

// RouteScreenshotRequest asks for a manual move of an inbox record.
type RouteScreenshotRequest struct {
	DestPath  string `json:"dest_path"`
	TargetDir string `json:"target_dir,omitempty"`
}

// DestinationRequest registers or updates a destination.
type DestinationRequest struct {
	Path      string `json:"path"`
	TargetDir string `json:"target_dir,omitempty"`
	Name      string `json:"name,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

// RouteRequest creates a routing rule. Active defaults to true when omitted.
type RouteRequest struct {
	SourcePath string `json:"source_path"`
	DestPath   string `json:"dest_path"`
	Priority   int    `json:"priority"`
	Active     *bool  `json:"active,omitempty"`
}

// RouteUpdateRequest adjusts an existing rule; nil fields are untouched.
type RouteUpdateRequest struct {
	Priority *int  `json:"priority,omitempty"`
	Active   *bool `json:"active,omitempty"`
}

// WatchRequest starts or stops watching a directory.
type WatchRequest struct {
	Path       string `json:"path"`
	DebounceMs int    `json:"debounce_ms,omitempty"`
}
