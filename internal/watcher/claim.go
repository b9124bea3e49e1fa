package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// claimMarker separates the original filename from the claim suffix. The
// suffix encodes pid and timestamp so concurrent daemons never mint the same
// claimed name.
const claimMarker = ".sr-claim-"

// ClaimName returns the claimed spelling of path for this process.
func ClaimName(path string) string {
	return fmt.Sprintf("%s%s%d-%d", path, claimMarker, os.Getpid(), time.Now().Unix())
}

// Claim atomically renames a settled file to its claimed name and returns the
// new path. A rename that fails because the file is gone means another
// claimant won the race; that is reported as ErrClaimLost, not a failure.
func Claim(path string) (string, error) {
	claimed := ClaimName(path)
	if err := os.Rename(path, claimed); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrClaimLost
		}
		return "", fmt.Errorf("claim %s: %w", path, err)
	}
	return claimed, nil
}

// IsClaimed reports whether a filename carries the claim suffix.
func IsClaimed(name string) bool {
	return strings.Contains(filepath.Base(name), claimMarker)
}

// OriginalExt recovers the lowercased extension of the file's pre-claim name,
// falling back when the original name had no extension at all. Works on both
// claimed and unclaimed names.
func OriginalExt(name, fallback string) string {
	base := filepath.Base(name)
	if idx := strings.Index(base, claimMarker); idx >= 0 {
		base = base[:idx]
	}
	if ext := filepath.Ext(base); ext != "" {
		return strings.ToLower(ext)
	}
	return fallback
}
