// Package logging builds the structured loggers used by the command-line
// tools, tagging each record with the program name, its version, and the
// trace context when one is present.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

var ErrUnknownFormat = errors.New("unknown log format")

// Options configures New. Output defaults to os.Stderr, Format to JSON, and
// Level to info.
type Options struct {
	Program string
	Version string
	Format  string
	Level   slog.Leveler
	Output  io.Writer
}

// New returns a logger for opts. It fails only on an unknown format.
func New(opts Options) (*slog.Logger, error) {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}

	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	switch opts.Format {
	case "", FormatJSON:
		base = slog.NewJSONHandler(w, handlerOpts)
	case FormatText:
		base = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}

	return slog.New(&contextHandler{
		Handler: base.WithAttrs([]slog.Attr{
			slog.String("program", opts.Program),
			slog.String("version", opts.Version),
		}),
	}), nil
}

// Discard returns a logger that writes nothing.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// contextHandler adds trace_id and span_id from the record's context.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
