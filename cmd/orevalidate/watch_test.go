package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string) *BagWatcher {
	t.Helper()
	w, err := NewBagWatcher(root, 20*time.Millisecond, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx))
	return w
}

func waitForChange(w *BagWatcher, timeout time.Duration) bool {
	select {
	case <-w.Changes():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestBagWatcher_SignalsContentChange(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bag-info.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(path, []byte("b"), 0644))
	assert.True(t, waitForChange(w, 2*time.Second), "expected a change signal")
}

func TestBagWatcher_IgnoresUnchangedContent(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bag-info.txt")
	require.NoError(t, os.WriteFile(path, []byte("same"), 0644))

	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(path, []byte("same"), 0644))
	assert.False(t, waitForChange(w, 200*time.Millisecond), "rewriting identical content should not signal")
}

func TestBagWatcher_NewDirectory(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	dir := filepath.Join(root, "ORE-REM")
	require.NoError(t, os.Mkdir(dir, 0755))
	require.True(t, waitForChange(w, 2*time.Second), "directory creation should signal")

	// Files in the new directory are watched too
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.xml"), []byte("<rdf/>"), 0644))
	assert.True(t, waitForChange(w, 2*time.Second), "write in new directory should signal")
}

func TestBagWatcher_CoalescesBursts(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(root, "f"+string(rune('a'+i))), []byte{byte(i)}, 0644))
	}
	require.True(t, waitForChange(w, 2*time.Second))

	// The signal channel holds at most one pending signal
	assert.LessOrEqual(t, len(w.changes), 1)
}

func TestBagWatcher_HiddenFilesIgnored(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".swp"), []byte("x"), 0644))
	assert.False(t, waitForChange(w, 200*time.Millisecond))
}
