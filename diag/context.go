// Package diag carries the process-wide verbosity level and diagnostic
// sink described by the data model's concurrency and resource notes:
// a context struct passed into every entry point instead of package
// globals, plus a logging singleton initialized the way InitSlog does
// it for the rest of the stack.
package diag

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/k0kubun/pp/v3"
)

// Level controls how much is written to the diagnostic stream.
// 0 is silent; higher values add more detail, matching the single
// process-wide verbosity integer of the external interface.
type Level int

const (
	Silent Level = iota
	Warn
	Debug
)

// Context is passed into every entry point that can fail softly
// (non-strict validation, dropped legacy records, remark-3 fallbacks).
// It is not safe for concurrent use by multiple files; each caller
// should hold its own Context the same way it holds its own *File.
type Context struct {
	Verbosity Level
	Out       io.Writer

	errs    *multierror.Error
	pp      *pp.PrettyPrinter
	noColor bool
}

// New builds a Context from the LOG_LEVEL environment variable the
// same way the rest of the stack initializes slog, mapping it onto
// the verbosity scale instead of slog levels.
func New() *Context {
	level := Warn
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		switch strings.ToLower(v) {
		case "silent", "error":
			level = Silent
		case "debug":
			level = Debug
		default:
			level = Warn
		}
	}
	pretty := pp.New()
	pretty.SetColoringEnabled(!color.NoColor)
	return &Context{
		Verbosity: level,
		Out:       os.Stderr,
		pp:        pretty,
	}
}

// Warnf records a non-strict diagnostic: validation failures, dropped
// legacy records, and similar conditions that do not abort the current
// operation. It both writes to the diagnostic stream (when verbosity
// allows) and accumulates into the Context's error list, so a caller
// that wants the full picture at the end can call Err().
func (c *Context) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.errs = multierror.Append(c.errs, fmt.Errorf("%s", msg))
	if c.Verbosity >= Warn && c.Out != nil {
		line := color.YellowString("warn: ") + msg
		fmt.Fprintln(c.Out, line)
	}
}

// Debugf writes a debug diagnostic visible only at Debug verbosity.
func (c *Context) Debugf(format string, args ...any) {
	if c.Verbosity >= Debug && c.Out != nil {
		fmt.Fprintln(c.Out, color.CyanString("debug: ")+fmt.Sprintf(format, args...))
	}
}

// Dump pretty-prints v to the diagnostic stream at Debug verbosity,
// using the same structural printer sqldef reaches for when its own
// diagnostics need to show a parsed value rather than describe it.
func (c *Context) Dump(label string, v any) {
	if c.Verbosity >= Debug && c.Out != nil && c.pp != nil {
		fmt.Fprintf(c.Out, "debug: %s = %s\n", label, c.pp.Sprint(v))
	}
}

// Progress logs a human-readable byte/row count at Warn verbosity or
// above, the way a long-running parse reports how much it consumed.
func (c *Context) Progress(format string, nbytes int, args ...any) {
	if c.Verbosity >= Warn && c.Out != nil {
		all := append(append([]any{}, args...), humanize.Bytes(uint64(nbytes)))
		fmt.Fprintf(c.Out, format+" (%s)\n", all...)
	}
}

// Err returns the accumulated non-strict diagnostics, or nil if none
// were recorded. Callers that only care about hard failures can ignore
// it; callers building a full report can inspect or log it.
func (c *Context) Err() error {
	if c.errs == nil {
		return nil
	}
	return c.errs.ErrorOrNil()
}

// Logger exposes a slog.Logger leveled according to Verbosity, for
// call sites that prefer structured logging over Warnf/Debugf.
func (c *Context) Logger() *slog.Logger {
	level := slog.LevelWarn
	if c.Verbosity >= Debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(c.Out, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
