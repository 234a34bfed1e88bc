// Package text implements a line buffer for source files. The buffer keeps
// each line's terminator so that content round-trips byte for byte unless a
// line is replaced.
package text

import (
	"bytes"
	"fmt"
)

// Line endings recognized by Parse.
const (
	LF   = "\n"
	CRLF = "\r\n"
)

// Position represents a position in a text buffer. Rows start at 1, columns
// at 0.
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// String returns a string representation of the position in row.col form.
func (p Position) String() string {
	return fmt.Sprintf("%d.%d", p.Row, p.Col)
}

// Line is a single line of text without its terminator.
type Line struct {
	Text   string
	Ending string // LF, CRLF, or "" for a final unterminated line
}

// Buffer represents a text buffer.
type Buffer struct {
	lines    []Line
	modified bool
}

// Parse splits p into lines. A trailing newline does not start a new line.
func Parse(p []byte) *Buffer {
	b := &Buffer{}
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			b.lines = append(b.lines, Line{Text: string(p)})
			break
		}
		line, ending := p[:i], LF
		if i > 0 && p[i-1] == '\r' {
			line, ending = p[:i-1], CRLF
		}
		b.lines = append(b.lines, Line{Text: string(line), Ending: ending})
		p = p[i+1:]
	}
	return b
}

// NumLines returns the number of lines of text in the buffer.
func (b *Buffer) NumLines() int {
	return len(b.lines)
}

// Line returns line n of b. Lines are numbered from 1.
func (b *Buffer) Line(n int) Line {
	return b.lines[n-1]
}

// Replace replaces the text of line n with s.
func (b *Buffer) Replace(n int, s string) {
	if b.lines[n-1].Text != s {
		b.lines[n-1].Text = s
		b.modified = true
	}
}

// SetEnding changes the terminator of line n. The final line keeps an empty
// terminator unless EnsureFinalNewline is called.
func (b *Buffer) SetEnding(n int, ending string) {
	l := &b.lines[n-1]
	if l.Ending != "" && l.Ending != ending {
		l.Ending = ending
		b.modified = true
	}
}

// HasFinalNewline reports whether the last line is terminated. An empty
// buffer counts as terminated.
func (b *Buffer) HasFinalNewline() bool {
	return len(b.lines) == 0 || b.lines[len(b.lines)-1].Ending != ""
}

// EnsureFinalNewline terminates the last line with LF if needed.
func (b *Buffer) EnsureFinalNewline() {
	if !b.HasFinalNewline() {
		b.lines[len(b.lines)-1].Ending = LF
		b.modified = true
	}
}

// Modified reports whether the buffer changed since Parse.
func (b *Buffer) Modified() bool {
	return b.modified
}

// Bytes returns the buffer contents with line terminators.
func (b *Buffer) Bytes() []byte {
	var buf bytes.Buffer
	for _, l := range b.lines {
		buf.WriteString(l.Text)
		buf.WriteString(l.Ending)
	}
	return buf.Bytes()
}
