// Package search finds the files a run should check.
package search

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rotisserie/eris"

	"github.com/jangler/enforcer/config"
)

// Matcher decides which directories to skip and which files to keep.
type Matcher struct {
	ignores []glob.Glob
	globs   []glob.Glob
	endings []string
}

// NewMatcher compiles the patterns in cfg.
func NewMatcher(cfg config.Config) (*Matcher, error) {
	m := &Matcher{endings: cfg.Endings}
	for _, pattern := range cfg.Ignore {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "%s seems not to be a valid pattern", pattern)
		}
		m.ignores = append(m.ignores, g)
	}
	for _, pattern := range cfg.Globs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, eris.Wrapf(err, "%s seems not to be a valid pattern", pattern)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Ignored reports whether a directory or file name matches an ignore
// pattern.
func (m *Matcher) Ignored(name string) bool {
	for _, g := range m.ignores {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Match reports whether the file at rel, a path relative to the search root,
// should be checked.
func (m *Matcher) Match(rel string) bool {
	name := filepath.Base(rel)
	for _, ending := range m.endings {
		if strings.HasSuffix(name, ending) {
			return true
		}
	}
	rel = filepath.ToSlash(rel)
	for _, g := range m.globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Find walks root and returns the sorted paths of all matching files. A root
// that is a regular file is returned as is.
func Find(ctx context.Context, root string, m *Matcher) ([]string, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to stat %s", root)
	}
	if fi.Mode().IsRegular() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != root && m.Ignored(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if m.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "failed to search %s", root)
	}

	sort.Strings(files)
	return files, nil
}
