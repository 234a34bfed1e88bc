// Package watch re-checks files as they change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"

	"github.com/jangler/enforcer/logging"
	"github.com/jangler/enforcer/search"
)

// Debounce is how long identical events are coalesced.
const Debounce = 50 * time.Millisecond

// Handler is called with the path of every changed file that the matcher
// accepts.
type Handler func(ctx context.Context, path string)

// Watcher watches a directory tree.
type Watcher struct {
	root    string
	matcher *search.Matcher
	w       *fsnotify.Watcher
	last    map[string]time.Time // only events newer than Debounce
}

// New creates a watcher for root and every directory below it that is not
// ignored by m.
func New(root string, m *search.Matcher) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, eris.Wrap(err, "failed to create watcher")
	}
	wt := &Watcher{root: root, matcher: m, w: w, last: map[string]time.Time{}}
	if err := wt.addTree(root); err != nil {
		w.Close()
		return nil, err
	}
	return wt, nil
}

func (wt *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != wt.root && wt.matcher.Ignored(d.Name()) {
			return filepath.SkipDir
		}
		if err := wt.w.Add(path); err != nil {
			return eris.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
}

// Close stops watching.
func (wt *Watcher) Close() error {
	return wt.w.Close()
}

// Run delivers changes to fn until ctx is done.
func (wt *Watcher) Run(ctx context.Context, fn Handler) error {
	logger := logging.Log(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-wt.w.Errors:
			if !ok {
				return eris.New("watch error channel closed")
			}
			logger.Warn().Err(err).Msg("watch error")
		case event, ok := <-wt.w.Events:
			if !ok {
				return eris.New("watch event channel closed")
			}
			wt.handle(ctx, event, fn)
		}
	}
}

func (wt *Watcher) handle(ctx context.Context, event fsnotify.Event, fn Handler) {
	logger := logging.Log(ctx)
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if wt.matcher.Ignored(filepath.Base(event.Name)) {
		return
	}

	now := time.Now()
	if t, ok := wt.last[event.Name]; ok && now.Sub(t) < Debounce {
		return
	}
	for name, t := range wt.last {
		if now.Sub(t) >= Debounce {
			delete(wt.last, name)
		}
	}
	wt.last[event.Name] = now

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if err := wt.addTree(event.Name); err != nil {
				logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
			}
		}
		return
	}
	if !info.Mode().IsRegular() {
		return
	}

	rel, err := filepath.Rel(wt.root, event.Name)
	if err != nil || !wt.matcher.Match(rel) {
		return
	}
	fn(ctx, event.Name)
}
