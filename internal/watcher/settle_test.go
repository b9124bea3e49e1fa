package watcher_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shotrouter/internal/testsupport"
	"shotrouter/internal/watcher"
)

func fastSettleOptions() watcher.SettleOptions {
	return watcher.SettleOptions{
		Debounce:     50 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
		Timeout:      2 * time.Second,
	}
}

func TestWaitForSettleStableFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shot.png")
	testsupport.WriteFile(t, path, 512)

	size, err := watcher.WaitForSettle(context.Background(), path, fastSettleOptions())
	if err != nil {
		t.Fatalf("WaitForSettle: %v", err)
	}
	if size != 512 {
		t.Fatalf("size = %d, want 512", size)
	}
}

func TestWaitForSettleWaitsForGrowthToStop(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shot.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	go func() {
		defer f.Close()
		chunk := make([]byte, 100)
		for i := 0; i < 5; i++ {
			_, _ = f.Write(chunk)
			time.Sleep(20 * time.Millisecond)
		}
	}()

	size, err := watcher.WaitForSettle(context.Background(), path, fastSettleOptions())
	if err != nil {
		t.Fatalf("WaitForSettle: %v", err)
	}
	if size != 500 {
		t.Fatalf("size = %d, want 500", size)
	}
}

func TestWaitForSettleVanishedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shot.png")
	testsupport.WriteFile(t, path, 64)

	go func() {
		time.Sleep(25 * time.Millisecond)
		_ = os.Remove(path)
	}()

	_, err := watcher.WaitForSettle(context.Background(), path, fastSettleOptions())
	if !errors.Is(err, watcher.ErrVanished) {
		t.Fatalf("err = %v, want ErrVanished", err)
	}
}

func TestWaitForSettleTimeout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shot.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		chunk := make([]byte, 10)
		for {
			select {
			case <-stop:
				return
			case <-time.After(15 * time.Millisecond):
				_, _ = f.Write(chunk)
			}
		}
	}()

	opts := watcher.SettleOptions{
		Debounce:     100 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
		Timeout:      200 * time.Millisecond,
	}
	_, err = watcher.WaitForSettle(context.Background(), path, opts)
	if !errors.Is(err, watcher.ErrSettleTimeout) {
		t.Fatalf("err = %v, want ErrSettleTimeout", err)
	}
}

func TestWaitForSettleObservesCancellation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shot.png")
	testsupport.WriteFile(t, path, 64)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	opts := watcher.SettleOptions{
		Debounce:     10 * time.Second,
		PollInterval: 10 * time.Millisecond,
		Timeout:      30 * time.Second,
	}
	start := time.Now()
	_, err := watcher.WaitForSettle(ctx, path, opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancellation took %s", elapsed)
	}
}
