package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

var (
	// ErrVanished reports that the file disappeared before it settled.
	ErrVanished = errors.New("file vanished before settling")
	// ErrSettleTimeout reports that the file never held a stable size
	// within the settle ceiling.
	ErrSettleTimeout = errors.New("file did not settle before timeout")
	// ErrClaimLost reports that another claimant renamed the file first.
	ErrClaimLost = errors.New("file already claimed")
)

// SettleOptions tunes the stabilization detector. Zero fields take the
// documented defaults.
type SettleOptions struct {
	// Debounce is how long the size must hold steady before the file is
	// considered fully written.
	Debounce time.Duration
	// PollInterval is the cadence of size checks.
	PollInterval time.Duration
	// Timeout caps the total wait for files that keep growing.
	Timeout time.Duration
}

const (
	defaultDebounce     = 400 * time.Millisecond
	defaultPollInterval = 100 * time.Millisecond
	defaultTimeout      = 30 * time.Second
)

func (o SettleOptions) withDefaults() SettleOptions {
	if o.Debounce <= 0 {
		o.Debounce = defaultDebounce
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return o
}

// WaitForSettle polls the file's size until it has held steady for the
// debounce window, then returns the settled size. Any size change restarts
// the window. Returns ErrVanished when the file disappears mid-wait,
// ErrSettleTimeout when the ceiling elapses first, and the context error on
// cancellation. Cancellation is observed within one poll interval.
func WaitForSettle(ctx context.Context, path string, opts SettleOptions) (int64, error) {
	opts = opts.withDefaults()
	deadline := time.Now().Add(opts.Timeout)

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	var (
		lastSize    int64 = -1
		stableSince time.Time
	)
	for {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return 0, ErrVanished
			}
			return 0, fmt.Errorf("stat %s: %w", path, err)
		}

		now := time.Now()
		if info.Size() != lastSize {
			lastSize = info.Size()
			stableSince = now
		} else if now.Sub(stableSince) >= opts.Debounce {
			return lastSize, nil
		}

		if now.After(deadline) {
			return 0, ErrSettleTimeout
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}
