package jsonfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_NotifiesOnMatchingWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, "violations.*", zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "violations.json"), []byte("{}"), 0o600))

	select {
	case ev := <-w.Events():
		assert.Equal(t, "violations.json", ev.Name)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, "violations.json", zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for %s", ev.Name)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_BadPattern(t *testing.T) {
	_, err := NewWatcher(t.TempDir(), "[", zerolog.Nop())
	require.Error(t, err)
}

func TestWatcher_CloseClosesEvents(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), "*", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
}
