// Package clean repairs the problems reported by package check that do not
// need a human: trailing whitespace, tabs, CRLF line endings and a missing
// final newline.
package clean

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/jangler/enforcer/check"
	"github.com/jangler/enforcer/tabs"
	"github.com/jangler/enforcer/text"
)

// DefaultTabStop is the width used to convert tabs when none is configured.
const DefaultTabStop = 4

// Options controls cleaning.
type Options struct {
	TabStop int
}

// Content returns p with the fixable problems in flags repaired, and whether
// anything changed. Content that is not valid UTF-8 is returned unchanged.
func Content(p []byte, flags check.Flags, opts Options) ([]byte, bool, error) {
	if flags&check.Fixable == 0 {
		return p, false, nil
	}
	if flags.Has(check.IllegalCharacters) && !utf8.Valid(p) {
		return p, false, nil
	}
	tabStop := opts.TabStop
	if tabStop == 0 {
		tabStop = DefaultTabStop
	}

	b := text.Parse(p)
	for i := 1; i <= b.NumLines(); i++ {
		s := b.Line(i).Text
		if flags.Has(check.TrailingSpaces) {
			s = strings.TrimRight(s, " \t")
		}
		if flags.Has(check.HasTabs) {
			var err error
			if s, err = tabs.Untabify(s, tabStop); err != nil {
				return p, false, err
			}
		}
		b.Replace(i, s)
		if flags.Has(check.WindowsLineEndings) {
			b.SetEnding(i, text.LF)
		}
	}
	if flags.Has(check.MissingFinalNewline) {
		b.EnsureFinalNewline()
	}

	if !b.Modified() {
		return p, false, nil
	}
	return b.Bytes(), true, nil
}

// File rewrites the file at res.Path with the fixable problems in res.Flags
// repaired. The file keeps its permissions; the new content is written to a
// temporary file next to it and renamed into place.
func File(res check.Result, opts Options) (bool, error) {
	path := res.Path
	info, err := os.Stat(path)
	if err != nil {
		return false, eris.Wrapf(err, "failed to stat %s", path)
	}
	p, err := os.ReadFile(path)
	if err != nil {
		return false, eris.Wrapf(err, "failed to read %s", path)
	}

	cleaned, changed, err := Content(p, res.Flags, opts)
	if err != nil {
		return false, eris.Wrapf(err, "failed to clean %s", path)
	}
	if !changed {
		return false, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return false, eris.Wrapf(err, "failed to create temporary file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(cleaned); err != nil {
		tmp.Close()
		return false, eris.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return false, eris.Wrapf(err, "failed to set permissions on %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return false, eris.Wrapf(err, "failed to close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, eris.Wrapf(err, "failed to replace %s", path)
	}

	return true, nil
}
