package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func startWatcher(t *testing.T, w *Watcher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	select {
	case <-w.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("watcher stopped early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("watcher never became ready")
	}
	return cancel, done
}

func TestWatchReportsDebouncedChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "family.yaml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("name: a\n"), 0644))

	core, logs := observer.New(zap.InfoLevel)
	changed := make(chan string, 8)
	w := New([]string{path}, func(p string) { changed <- p }).
		WithDebounce(50 * time.Millisecond).
		WithLogger(zap.New(core))

	cancel, done := startWatcher(t, w)
	defer cancel()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("name: b\n"), 0644))
	}

	select {
	case got := <-changed:
		want, _ := filepath.Abs(path)
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	// the burst of writes collapses into one report
	select {
	case got := <-changed:
		t.Fatalf("unexpected second report for %s", got)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	assert.True(t, errors.Is(<-done, context.Canceled))
	assert.Equal(t, 1, logs.FilterMessage("watching for changes").Len())
	assert.Equal(t, 1, logs.FilterMessage("file changed").Len())
}

func TestWatchMissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)
	w := New([]string{filepath.Join(t.TempDir(), "gone", "k.yaml")}, func(string) {})
	err := w.Watch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch directory")
}

func TestWithDebounceIgnoresNonPositive(t *testing.T) {
	w := New(nil, nil).WithDebounce(0)
	assert.Equal(t, DefaultDebounce, w.debounce)
	w.WithDebounce(time.Second)
	assert.Equal(t, time.Second, w.debounce)
}
