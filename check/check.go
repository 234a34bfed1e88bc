// Package check inspects file contents for whitespace and encoding problems.
package check

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/jangler/enforcer/tabs"
	"github.com/jangler/enforcer/text"
)

// Flags is a set of problems found in a file.
type Flags uint8

const (
	HasTabs Flags = 1 << iota
	TrailingSpaces
	IllegalCharacters
	LineTooLong
	WindowsLineEndings
	MissingFinalNewline
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{HasTabs, "HAS_TABS"},
	{TrailingSpaces, "TRAILING_SPACES"},
	{IllegalCharacters, "HAS_ILLEGAL_CHARACTERS"},
	{LineTooLong, "LINE_TOO_LONG"},
	{WindowsLineEndings, "WINDOWS_LINE_ENDINGS"},
	{MissingFinalNewline, "MISSING_FINAL_NEWLINE"},
}

// Fixable holds the flags the cleaner can repair without help.
const Fixable = HasTabs | TrailingSpaces | WindowsLineEndings | MissingFinalNewline

// Has reports whether all of other is set in f.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// Names returns the names of the set flags in a fixed order.
func (f Flags) Names() []string {
	names := []string{}
	for _, n := range flagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

func (f Flags) String() string {
	if f == 0 {
		return "OK"
	}
	return strings.Join(f.Names(), " | ")
}

// MarshalJSON encodes f as a list of flag names.
func (f Flags) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Names())
}

// MarshalYAML encodes f as a list of flag names.
func (f Flags) MarshalYAML() (interface{}, error) {
	return f.Names(), nil
}

// Options controls which checks run.
type Options struct {
	Tabs          bool // leave tabs alone
	MaxLineLength int  // 0 disables the check
	TabStop       int  // used to measure line length
	CRLF          bool // flag CRLF line endings
	FinalNewline  bool // flag files without a trailing newline
}

// Finding locates one problem.
type Finding struct {
	Flag Flags         `json:"flag" yaml:"flag"`
	Pos  text.Position `json:"pos" yaml:"pos"`
	Text string        `json:"text" yaml:"text"`
}

// Result is the outcome of checking one file.
type Result struct {
	Path     string    `json:"path" yaml:"path"`
	Flags    Flags     `json:"flags" yaml:"flags"`
	Findings []Finding `json:"findings,omitempty" yaml:"findings,omitempty"`
	Size     int64     `json:"size" yaml:"size"`
	Cleaned  bool      `json:"cleaned,omitempty" yaml:"cleaned,omitempty"`
	Err      error     `json:"-" yaml:"-"`
}

// Remaining returns the flags still present after cleaning.
func (r Result) Remaining() Flags {
	if r.Cleaned {
		return r.Flags &^ Fixable
	}
	return r.Flags
}

func (r *Result) add(flag Flags, pos text.Position, format string, args ...interface{}) {
	r.Flags |= flag
	r.Findings = append(r.Findings, Finding{flag, pos, fmt.Sprintf(format, args...)})
}

// Content checks p, the contents of the file called name.
func Content(name string, p []byte, opts Options) Result {
	res := Result{Path: name, Size: int64(len(p))}
	tabStop := opts.TabStop
	if tabStop < 1 {
		tabStop = 4
	}

	b := text.Parse(p)
	if !utf8.Valid(p) {
		for i := 1; i <= b.NumLines(); i++ {
			if s := b.Line(i).Text; !utf8.ValidString(s) {
				col := 0
				for col < len(s) {
					r, size := utf8.DecodeRuneInString(s[col:])
					if r == utf8.RuneError && size <= 1 {
						break
					}
					col += size
				}
				res.add(IllegalCharacters, text.Position{Row: i, Col: col}, "invalid UTF-8")
				break
			}
		}
		return res
	}

	for i := 1; i <= b.NumLines(); i++ {
		line := b.Line(i)
		s := line.Text

		if trimmed := strings.TrimRight(s, " \t"); len(trimmed) != len(s) {
			res.add(TrailingSpaces, text.Position{Row: i, Col: len(trimmed)}, "trailing whitespace")
		}
		if !opts.Tabs {
			if col := strings.IndexByte(s, '\t'); col >= 0 {
				res.add(HasTabs, text.Position{Row: i, Col: col}, "tab character")
			}
		}
		for col := 0; col < len(s); col++ {
			if s[col] > 127 {
				res.add(IllegalCharacters, text.Position{Row: i, Col: col}, "non-ASCII character")
				break
			}
		}
		if opts.MaxLineLength > 0 {
			if n := tabs.Columns(s, tabStop); n > opts.MaxLineLength {
				res.add(LineTooLong, text.Position{Row: i, Col: opts.MaxLineLength},
					"line is %d columns, max %d", n, opts.MaxLineLength)
			}
		}
		if opts.CRLF && line.Ending == text.CRLF {
			res.add(WindowsLineEndings, text.Position{Row: i, Col: len(s)}, "CRLF line ending")
		}
	}

	if opts.FinalNewline && !b.HasFinalNewline() {
		n := b.NumLines()
		res.add(MissingFinalNewline, text.Position{Row: n, Col: len(b.Line(n).Text)}, "no newline at end of file")
	}

	return res
}

// File reads and checks the file at path.
func File(path string, opts Options) (Result, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: err}, eris.Wrapf(err, "failed to read %s", path)
	}
	return Content(path, p, opts), nil
}
