// internal/logbuf/handler.go

package logbuf

import (
	"context"
	"log/slog"
	"strings"
)

// Handler is a slog.Handler that renders each record into a Buffer and
// forwards it to an optional downstream handler.
type Handler struct {
	buf   *Buffer
	next  slog.Handler
	level slog.Leveler

	prefix string // rendered handler-level attrs
	group  string
}

// NewHandler returns a handler writing to buf at or above level.
// next may be nil.
func NewHandler(buf *Buffer, next slog.Handler, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{buf: buf, next: next, level: level}
}

func (h *Handler) Enabled(ctx context.Context, l slog.Level) bool {
	if l >= h.level.Level() {
		return true
	}
	return h.next != nil && h.next.Enabled(ctx, l)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level.Level() {
		h.buf.Append(h.render(r))
	}
	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	var sb strings.Builder
	sb.WriteString(h.prefix)
	for _, a := range attrs {
		writeAttr(&sb, h.group, a)
	}
	c.prefix = sb.String()
	if h.next != nil {
		c.next = h.next.WithAttrs(attrs)
	}
	return &c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	if h.group == "" {
		c.group = name
	} else {
		c.group = h.group + "." + name
	}
	if h.next != nil {
		c.next = h.next.WithGroup(name)
	}
	return &c
}

// render produces "[LEVEL] message key=value ..." with the level tag
// omitted for INFO.
func (h *Handler) render(r slog.Record) string {
	var sb strings.Builder
	if r.Level != slog.LevelInfo {
		sb.WriteString("[")
		sb.WriteString(r.Level.String())
		sb.WriteString("] ")
	}
	sb.WriteString(r.Message)
	sb.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})
	return sb.String()
}

func writeAttr(sb *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	switch {
	case group == "":
	case key == "":
		key = group
	default:
		key = group + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, key, ga)
		}
		return
	}

	sb.WriteByte(' ')
	sb.WriteString(key)
	sb.WriteByte('=')
	v := a.Value.String()
	if strings.ContainsAny(v, " \t\n\"") {
		v = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	sb.WriteString(v)
}
