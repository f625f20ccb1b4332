package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var levelColors = map[slog.Level]color.Attribute{
	slog.LevelDebug: color.FgCyan,
	slog.LevelInfo:  color.FgGreen,
	slog.LevelWarn:  color.FgYellow,
	slog.LevelError: color.FgRed,
}

// ColoredHandler writes one human-readable, colorized line per record:
// time, level, request id, message, then key=value attributes.
type ColoredHandler struct {
	out     io.Writer
	mu      *sync.Mutex
	level   slog.Leveler
	attrs   []slog.Attr
	group   string
	noColor bool
}

// NewColoredHandler creates a ColoredHandler. Colors are disabled when noColor is set.
func NewColoredHandler(w io.Writer, opts *slog.HandlerOptions, noColor bool) *ColoredHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &ColoredHandler{
		out:     w,
		mu:      &sync.Mutex{},
		level:   level,
		noColor: noColor,
	}
}

func (h *ColoredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ColoredHandler) Handle(_ context.Context, r slog.Record) error {
	levelColor, ok := levelColors[r.Level]
	if !ok {
		levelColor = color.FgWhite
	}

	var line strings.Builder
	line.WriteString(h.paint(r.Time.Format("15:04:05.000"), color.FgMagenta))
	line.WriteByte(' ')
	line.WriteString(h.paint(fmt.Sprintf("%-5s", r.Level.String()), levelColor))
	line.WriteByte(' ')

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		attrs = append(attrs, a)
		return true
	})

	for _, a := range attrs {
		if a.Key == RequestIDKey {
			line.WriteString(h.paint("["+a.Value.String()+"]", color.FgBlue, color.Bold))
			line.WriteByte(' ')
			break
		}
	}

	line.WriteString(h.paint(r.Message, color.FgWhite, color.Bold))

	for _, a := range attrs {
		if a.Key == RequestIDKey || a.Equal(slog.Attr{}) {
			continue
		}
		val := a.Value.Resolve().String()
		if a.Value.Kind() == slog.KindString {
			val = fmt.Sprintf("%q", val)
		}
		line.WriteByte(' ')
		line.WriteString(h.paint(a.Key, color.FgYellow))
		line.WriteByte('=')
		line.WriteString(val)
	}
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line.String())
	return err
}

func (h *ColoredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *ColoredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func (h *ColoredHandler) paint(s string, attrs ...color.Attribute) string {
	if h.noColor {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// ContextHandler adds the request id stored in the context to every record.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String(RequestIDKey, id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{h.Handler.WithGroup(name)}
}
