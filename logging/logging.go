// Package logging sets up zerolog for the command line and carries the
// logger through a context.
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

func init() {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, os.Getenv("ENFORCER_TRACE") != "")
	}
}

type loggerKey struct{}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Log returns the logger attached to ctx, or a disabled logger.
func Log(ctx context.Context) *zerolog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*zerolog.Logger)
	if !ok {
		nop := zerolog.Nop()
		return &nop
	}
	return logger
}

// ConsoleWriter turns zerolog's JSON events into single colored lines.
type ConsoleWriter struct {
	Out     io.Writer
	NoColor bool

	buffer strings.Builder
	lock   sync.Mutex
}

// NewConsoleWriter returns a ConsoleWriter writing to out.
func NewConsoleWriter(out io.Writer, color bool) *ConsoleWriter {
	return &ConsoleWriter{Out: out, NoColor: !color}
}

func (w *ConsoleWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	var evt map[string]interface{}
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	err = d.Decode(&evt)
	if err != nil {
		return n, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	w.buffer.Reset()
	switch evt[zerolog.LevelFieldName] {
	case "fatal", "error":
		w.buffer.WriteString("[red]")
	case "warn":
		w.buffer.WriteString("[yellow]")
	case "debug", "trace":
		w.buffer.WriteString("[blue]")
	default:
		w.buffer.WriteString("[green]")
	}

	if evt[zerolog.LevelFieldName] == "error" {
		w.buffer.WriteString("Error: ")
	}

	msg, _ := evt[zerolog.MessageFieldName].(string)
	w.buffer.WriteString(msg)

	if path, ok := evt["path"].(string); ok {
		w.buffer.WriteString(" [dim]" + path)
	}

	if errorDetails, ok := evt[zerolog.ErrorFieldName]; ok {
		w.buffer.WriteString("\n")
		w.buffer.WriteString(fmt.Sprint(errorDetails))
	}
	w.buffer.WriteString("[reset]\n")

	colorize := colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: w.NoColor,
		Reset:   true,
	}
	if _, err := io.WriteString(w.Out, colorize.Color(w.buffer.String())); err != nil {
		return 0, err
	}
	return len(p), nil
}

// New returns a logger that writes through a ConsoleWriter at the given
// level.
func New(out io.Writer, level zerolog.Level, color bool) zerolog.Logger {
	return zerolog.New(NewConsoleWriter(out, color)).Level(level)
}

// Level picks the log level for the command line flags.
func Level(debug bool, verbosity int) zerolog.Level {
	switch {
	case debug:
		return zerolog.DebugLevel
	case verbosity > 0:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}
