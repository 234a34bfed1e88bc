// Package report prints check results.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/jangler/enforcer/check"
)

// Formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options controls text output.
type Options struct {
	Color   bool
	Verbose bool // list every finding
	Quiet   bool // only print the number of dirty files
}

// Summary counts the results of a run.
type Summary struct {
	Files     int   `json:"files" yaml:"files"`
	Bytes     int64 `json:"bytes" yaml:"bytes"`
	Dirty     int   `json:"dirty" yaml:"dirty"`
	Cleaned   int   `json:"cleaned" yaml:"cleaned"`
	Remaining int   `json:"remaining" yaml:"remaining"`
	Errors    int   `json:"errors" yaml:"errors"`
}

// Summarize counts results.
func Summarize(results []check.Result) Summary {
	var s Summary
	for _, res := range results {
		s.Files++
		s.Bytes += res.Size
		if res.Err != nil {
			s.Errors++
		}
		if res.Flags != 0 {
			s.Dirty++
		}
		if res.Cleaned {
			s.Cleaned++
		}
		if res.Remaining() != 0 {
			s.Remaining++
		}
	}
	return s
}

func (s Summary) String() string {
	msg := fmt.Sprintf("checked %s files (%s), %s with problems",
		humanize.Comma(int64(s.Files)), humanize.Bytes(uint64(s.Bytes)), humanize.Comma(int64(s.Dirty)))
	if s.Cleaned > 0 {
		msg += fmt.Sprintf(", %s cleaned", humanize.Comma(int64(s.Cleaned)))
	}
	if s.Errors > 0 {
		msg += fmt.Sprintf(", %s unreadable", humanize.Comma(int64(s.Errors)))
	}
	return msg
}

func flagColor(f check.Flags) string {
	switch {
	case f&^check.Fixable != 0:
		return "[red]"
	case f != 0:
		return "[yellow]"
	default:
		return "[green]"
	}
}

// Text writes one line per file with problems, in the form
// HAS_TABS | TRAILING_SPACES:[path].
func Text(w io.Writer, results []check.Result, opts Options) error {
	colorize := colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !opts.Color,
		Reset:   true,
	}
	summary := Summarize(results)

	if opts.Quiet {
		_, err := fmt.Fprintln(w, summary.Dirty)
		return err
	}

	var b strings.Builder
	for _, res := range results {
		if res.Flags == 0 {
			continue
		}
		b.WriteString(colorize.Color(flagColor(res.Remaining()) + res.Flags.String()))
		fmt.Fprintf(&b, ":[%s]", res.Path)
		if res.Cleaned {
			b.WriteString(colorize.Color(" [green]-> cleaned"))
		}
		b.WriteByte('\n')
		if opts.Verbose {
			for _, f := range res.Findings {
				fmt.Fprintf(&b, "  %s:%s: %s\n", res.Path, f.Pos, f.Text)
			}
		}
	}
	b.WriteString(colorize.Color(flagColor(check.Flags(0)) + summary.String()))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

type document struct {
	Summary Summary        `json:"summary" yaml:"summary"`
	Results []check.Result `json:"results" yaml:"results"`
}

func newDocument(results []check.Result) document {
	dirty := []check.Result{}
	for _, res := range results {
		if res.Flags != 0 {
			dirty = append(dirty, res)
		}
	}
	return document{Summary: Summarize(results), Results: dirty}
}

// JSON writes the files with problems and a summary as JSON.
func JSON(w io.Writer, results []check.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDocument(results)); err != nil {
		return eris.Wrap(err, "failed to encode report")
	}
	return nil
}

// YAML writes the files with problems and a summary as YAML.
func YAML(w io.Writer, results []check.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(results)); err != nil {
		return eris.Wrap(err, "failed to encode report")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "failed to encode report")
	}
	return nil
}

// Write prints results in the given format.
func Write(w io.Writer, format string, results []check.Result, opts Options) error {
	switch format {
	case FormatText, "":
		return Text(w, results, opts)
	case FormatJSON:
		return JSON(w, results)
	case FormatYAML:
		return YAML(w, results)
	default:
		return eris.Errorf("unknown report format %q", format)
	}
}
