package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangler/enforcer/config"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
	}
	return root
}

func find(t *testing.T, root string, cfg config.Config) []string {
	t.Helper()
	m, err := NewMatcher(cfg)
	require.NoError(t, err)
	files, err := Find(context.Background(), root, m)
	require.NoError(t, err)
	for i, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		files[i] = filepath.ToSlash(rel)
	}
	return files
}

func TestFindAllMatches(t *testing.T) {
	root := writeTree(t, "test0.cpp", "abc/test1.cpp", "abc/readme.md", ".git/x.cpp")
	cfg := config.Default()
	cfg.Endings = []string{".cpp"}
	assert.Equal(t, []string{"abc/test1.cpp", "test0.cpp"}, find(t, root, cfg))
}

func TestIgnoreSomePaths(t *testing.T) {
	root := writeTree(t, "test0.cpp", "abc/test1.cpp", "build_Debug/gen.cpp", "src/build_x/y.cpp")
	cfg := config.Default()
	cfg.Ignore = []string{"abc", "build_*"}
	cfg.Endings = []string{".cpp"}
	assert.Equal(t, []string{"test0.cpp"}, find(t, root, cfg))
}

func TestGlobs(t *testing.T) {
	root := writeTree(t, "a.md", "docs/b.md", "docs/deep/c.md", "d.txt")
	cfg := config.Default()
	cfg.Endings = nil
	cfg.Globs = []string{"docs/**.md"}
	assert.Equal(t, []string{"docs/b.md", "docs/deep/c.md"}, find(t, root, cfg))

	cfg.Globs = []string{"*.md"}
	assert.Equal(t, []string{"a.md"}, find(t, root, cfg))
}

func TestFindFileRoot(t *testing.T) {
	root := writeTree(t, "one.txt")
	path := filepath.Join(root, "one.txt")
	m, err := NewMatcher(config.Default())
	require.NoError(t, err)
	files, err := Find(context.Background(), path, m)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestFindMissingRoot(t *testing.T) {
	m, err := NewMatcher(config.Default())
	require.NoError(t, err)
	_, err = Find(context.Background(), filepath.Join(t.TempDir(), "nope"), m)
	assert.Error(t, err)
}

func TestFindCancelled(t *testing.T) {
	root := writeTree(t, "a.c")
	m, err := NewMatcher(config.Default())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Find(ctx, root, m)
	assert.Error(t, err)
}

func TestMatcher(t *testing.T) {
	cfg := config.Default()
	cfg.Ignore = []string{"build_*", ".git"}
	m, err := NewMatcher(cfg)
	require.NoError(t, err)
	assert.True(t, m.Ignored("build_"))
	assert.True(t, m.Ignored("build_Debug"))
	assert.True(t, m.Ignored(".git"))
	assert.False(t, m.Ignored("bla"))

	assert.True(t, m.Match("src/x.h"))
	assert.False(t, m.Match("src/x.hpp"))

	cfg.Ignore = []string{"[z"}
	_, err = NewMatcher(cfg)
	assert.Error(t, err)
}
