package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsTargetChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "worldserver.yaml")
	require.NoError(t, os.WriteFile(target, []byte("tick_millis: 50\n"), 0o644))

	w, err := NewWatcher(target)
	require.NoError(t, err)
	defer w.Close()

	// A change to an unrelated file in the same directory is filtered out.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))

	require.NoError(t, os.WriteFile(target, []byte("tick_millis: 33\n"), 0o644))

	select {
	case got := <-w.Events:
		assert.Equal(t, target, filepath.Clean(got))
	case <-time.After(2 * time.Second):
		t.Fatal("no change event within 2s")
	}

	select {
	case got, ok := <-w.Events:
		if ok {
			t.Fatalf("unexpected extra event %q", got)
		}
	default:
	}
}

// Close may race a change event in flight; the run goroutine owns the
// channels, so the event either delivers or is dropped, never panics.
func TestWatcher_CloseRacesWithEvents(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "worldserver.yaml")
	require.NoError(t, os.WriteFile(target, []byte("tick_millis: 50\n"), 0o644))

	for i := 0; i < 20; i++ {
		w, err := NewWatcher(target)
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 10; i++ {
				_ = os.WriteFile(target, []byte("tick_millis: 33\n"), 0o644)
			}
		}()

		require.NoError(t, w.Close())
		<-done

		// Drain until the run goroutine closes the channels.
		for range w.Events {
		}
		_, ok := <-w.Errors
		assert.False(t, ok)
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "worldserver.yaml")

	w, err := NewWatcher(target)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	_, ok := <-w.Events
	assert.False(t, ok)
}
