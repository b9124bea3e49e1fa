package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultSourceCandidates returns platform-specific directories where
// screenshot tools commonly write, filtered to those that exist. Used when no
// sources are configured.
func DefaultSourceCandidates() []string {
	var candidates []string
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	switch runtime.GOOS {
	case "darwin":
		if home != "" {
			candidates = append(candidates,
				filepath.Join(home, "Desktop"),
				filepath.Join(home, "Pictures"),
			)
		}
	case "windows":
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			candidates = append(candidates, filepath.Join(profile, "Pictures", "Screenshots"))
		}
		if onedrive := os.Getenv("OneDrive"); onedrive != "" {
			candidates = append(candidates, filepath.Join(onedrive, "Pictures", "Screenshots"))
		}
	default:
		if home != "" {
			candidates = append(candidates,
				filepath.Join(home, "Pictures", "Screenshots"),
				filepath.Join(home, "Pictures"),
			)
		}
	}

	existing := candidates[:0]
	for _, dir := range candidates {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		existing = append(existing, dir)
	}
	return existing
}
