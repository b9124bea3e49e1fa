package router

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"shotrouter/internal/logging"
)

// moveFile renames a file, falling back to copy+delete for cross-device
// moves.
func moveFile(logger *slog.Logger, source, target string) error {
	renameErr := os.Rename(source, target)
	if renameErr == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if copyErr := copyFile(source, target); copyErr != nil {
			return copyErr
		}
		if err := os.Remove(source); err != nil {
			logger.Warn("failed to remove source file after copy; duplicate files remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "route_source_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "manually delete the claimed file"),
				logging.String(logging.FieldImpact, "duplicate file exists in the watched directory"),
			)
		}
		return nil
	}

	return renameErr
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}
