package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Run(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "classes"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))

	w, err := New([]string{"build"}, nil)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)
	require.NoError(t, w.Add(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches := make(chan []string, 10)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(paths []string) { batches <- paths }) }()

	fixture := filepath.Join(root, "classes", "c.kt")
	require.NoError(t, os.WriteFile(fixture, []byte("class C"), 0o644))

	select {
	case paths := <-batches:
		assert.Contains(t, paths, fixture)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Add_SkipsOnlyNamedDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{".staging", "out", "build"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	w, err := New([]string{"build"}, nil)
	require.NoError(t, err)
	defer w.watcher.Close()
	require.NoError(t, w.Add(root))

	watched := w.watcher.WatchList()
	assert.Contains(t, watched, filepath.Join(root, ".staging"))
	assert.Contains(t, watched, filepath.Join(root, "out"))
	assert.NotContains(t, watched, filepath.Join(root, "build"))
}

func TestWatcher_AddMissing(t *testing.T) {
	w, err := New(nil, nil)
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing")))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"a", "b", "a", "b"}))
}
