package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{".git", ".bake", ".repo"}, cfg.Ignore)
	assert.Equal(t, []string{".c", ".cpp", ".h"}, cfg.Endings)
	assert.Equal(t, 4, cfg.TabWidth)
	require.NoError(t, cfg.Validate())
}

func TestParseTOML(t *testing.T) {
	cfg, err := Parse([]byte(`
ignore = [".git", ".repo"]
endings = [".c", ".cpp", ".h"]
line_length = 120
`), false)
	require.NoError(t, err)
	assert.Equal(t, []string{".git", ".repo"}, cfg.Ignore)
	assert.Equal(t, []string{".c", ".cpp", ".h"}, cfg.Endings)
	assert.Equal(t, 120, cfg.LineLength)
	assert.Equal(t, 4, cfg.TabWidth)
}

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte("endings: [.go]\nglobs: ['**/*.md']\ntabs: true\ntab_width: 8\n"), true)
	require.NoError(t, err)
	assert.Equal(t, []string{".go"}, cfg.Endings)
	assert.Equal(t, []string{"**/*.md"}, cfg.Globs)
	assert.True(t, cfg.Tabs)
	assert.Equal(t, 8, cfg.TabWidth)
	assert.Equal(t, []string{".git", ".bake", ".repo"}, cfg.Ignore)

	cfg, err = Parse(nil, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseBroken(t *testing.T) {
	_, err := Parse([]byte(`ignore = [".git"`), false)
	assert.Error(t, err)

	_, err = Parse([]byte(`ignored = [".git"]`), false)
	assert.True(t, eris.Is(err, ErrInvalid))

	_, err = Parse([]byte("ignored: [.git]\n"), true)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TabWidth = 0
	assert.True(t, eris.Is(cfg.Validate(), ErrInvalid))

	cfg = Default()
	cfg.LineLength = -1
	assert.True(t, eris.Is(cfg.Validate(), ErrInvalid))

	cfg = Default()
	cfg.Endings = nil
	assert.True(t, eris.Is(cfg.Validate(), ErrInvalid))
	cfg.Globs = []string{"**/*.c"}
	assert.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.Ignore = []string{"build_[a"}
	assert.True(t, eris.Is(cfg.Validate(), ErrInvalid))
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(dir, ".enforcer.yml")
	require.NoError(t, os.WriteFile(path, []byte("endings: [.rs]\n"), 0644))
	cfg, err = Find(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{".rs"}, cfg.Endings)
	assert.Equal(t, path, cfg.Path)

	path = filepath.Join(dir, ".enforcer")
	require.NoError(t, os.WriteFile(path, []byte(`endings = [".h"]`), 0644))
	cfg, err = Find(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{".h"}, cfg.Endings)
	assert.Equal(t, path, cfg.Path)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.LineLength = 100
	cfg.CRLF = true

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, cfg))
	assert.Contains(t, buf.String(), "line_length = 100")

	parsed, err := Parse(buf.Bytes(), false)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.LineLength = 80
	cfg.Tabs = true
	opts := cfg.CheckOptions()
	assert.Equal(t, 80, opts.MaxLineLength)
	assert.Equal(t, 4, opts.TabStop)
	assert.True(t, opts.Tabs)
	assert.Equal(t, 4, cfg.CleanOptions().TabStop)
}
