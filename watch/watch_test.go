package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangler/enforcer/config"
	"github.com/jangler/enforcer/search"
)

func start(t *testing.T, root string) <-chan string {
	t.Helper()
	m, err := search.NewMatcher(config.Default())
	require.NoError(t, err)
	w, err := New(root, m)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(_ context.Context, path string) {
			changed <- path
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return changed
}

func waitFor(t *testing.T, changed <-chan string, want string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-changed:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("no change reported for %s", want)
		}
	}
}

func TestWatchReportsMatchingFiles(t *testing.T) {
	root := t.TempDir()
	changed := start(t, root)

	ignored := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(ignored, []byte("x\n"), 0644))
	path := filepath.Join(root, "a.c")
	require.NoError(t, os.WriteFile(path, []byte("x \n"), 0644))

	waitFor(t, changed, path)
}

func TestWatchNewDirectory(t *testing.T) {
	root := t.TempDir()
	changed := start(t, root)

	dir := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(dir, 0755))
	// Give the watcher time to pick up the new directory.
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(dir, "b.h")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
	waitFor(t, changed, path)
}

func TestWatchSkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))

	m, err := search.NewMatcher(config.Default())
	require.NoError(t, err)
	w, err := New(root, m)
	require.NoError(t, err)
	defer w.Close()

	assert.ElementsMatch(t, []string{root}, w.w.WatchList())
}

func TestWatchForgetsOldEvents(t *testing.T) {
	root := t.TempDir()
	m, err := search.NewMatcher(config.Default())
	require.NoError(t, err)
	wt := &Watcher{root: root, matcher: m, last: map[string]time.Time{
		filepath.Join(root, "old.c"):    time.Now().Add(-time.Minute),
		filepath.Join(root, "recent.c"): time.Now(),
	}}

	path := filepath.Join(root, "new.c")
	wt.handle(context.Background(), fsnotify.Event{Name: path, Op: fsnotify.Write}, func(context.Context, string) {})

	assert.NotContains(t, wt.last, filepath.Join(root, "old.c"))
	assert.Contains(t, wt.last, filepath.Join(root, "recent.c"))
	assert.Contains(t, wt.last, path)
}
