// Package tabs implements functions for expanding tabs in text.
package tabs

import (
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// DefaultFill is the rune Expand uses in place of a tab. It makes tab stops
// visible, unlike a space.
const DefaultFill = '-'

// ErrInvalidTabStop is returned when a tab stop is smaller than one.
var ErrInvalidTabStop = eris.New("tab stop must be at least 1")

// Validate returns an error wrapping ErrInvalidTabStop if tabStop is smaller
// than one.
func Validate(tabStop int) error {
	if tabStop < 1 {
		return eris.Wrapf(ErrInvalidTabStop, "got %d", tabStop)
	}
	return nil
}

// Expander replaces tabs with a fill rune.
type Expander struct {
	TabStop int
	Fill    rune // DefaultFill if zero
}

// Expand replaces every tab in s with fill runes. The number of runes is
// taken from the run of non-tab, non-newline characters directly before the
// tab: TabStop - run%TabStop, so it is always between 1 and TabStop.
// Newlines are copied through and end the current run. Bytes that are not
// valid UTF-8 are copied as is and count as one character each.
func (e Expander) Expand(s string) (string, error) {
	if err := Validate(e.TabStop); err != nil {
		return "", err
	}
	fill := e.Fill
	if fill == 0 {
		fill = DefaultFill
	}

	var b strings.Builder
	b.Grow(len(s))
	run := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		switch s[i] {
		case '\t':
			for n := FillLength(run, e.TabStop); n > 0; n-- {
				b.WriteRune(fill)
			}
			run = 0
		case '\n':
			b.WriteByte('\n')
			run = 0
		default:
			b.WriteString(s[i : i+size])
			run++
		}
		i += size
	}
	return b.String(), nil
}

// Expand replaces tabs in a string with DefaultFill runes according to the
// given tab stop, and returns the resulting string.
func Expand(s string, tabStop int) (string, error) {
	return Expander{TabStop: tabStop}.Expand(s)
}

// FillLength returns the number of fill runes a tab following run
// characters expands to. tabStop must be > 0.
func FillLength(run, tabStop int) int {
	return tabStop - run%tabStop
}

// Untabify replaces tabs in a string with spaces so that text after each tab
// starts on the next tab stop. Columns restart after every newline.
func Untabify(s string, tabStop int) (string, error) {
	if err := Validate(tabStop); err != nil {
		return "", err
	}
	if strings.IndexByte(s, '\t') < 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s) + tabStop*strings.Count(s, "\t"))
	col := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		switch s[i] {
		case '\t':
			b.WriteByte(' ')
			col++
			for col%tabStop != 0 {
				b.WriteByte(' ')
				col++
			}
		case '\n':
			b.WriteByte('\n')
			col = 0
		default:
			b.WriteString(s[i : i+size])
			col++
		}
		i += size
	}

	return b.String(), nil
}

// Columns returns the number of columns needed to display a string expanded
// according to the given tab stop. Only the last line of s is measured.
func Columns(s string, tabStop int) int {
	if tabStop < 1 {
		tabStop = 1
	}
	col := 0
	for _, ch := range s {
		switch ch {
		case '\t':
			col += tabStop - col%tabStop
		case '\n':
			col = 0
		default:
			col++
		}
	}
	return col
}
