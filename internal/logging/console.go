package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders one line per record for terminals and the log file:
//
//	2026-10-19T12:00:00Z WARN  syncer [transactions page 2] client skipped reason="no id" event=record_skipped run=1a2b3c4d
//
// component, step and page lead the line; event_type and run_id trail it.
type consoleHandler struct {
	out    *lockedWriter
	level  slog.Level
	source bool
	fields []field
	prefix string
}

type field struct {
	key   string
	value slog.Value
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) write(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.w.Write(p)
	return err
}

func newConsoleHandler(w io.Writer, level slog.Level, addSource bool) slog.Handler {
	return &consoleHandler{out: &lockedWriter{w: w}, level: level, source: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = append([]field(nil), h.fields...)
	for _, a := range attrs {
		next.fields = appendField(next.fields, h.prefix, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	fields := append([]field(nil), h.fields...)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.prefix, a)
		return true
	})

	var component, step, page, event, runID string
	rest := make([]field, 0, len(fields))
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = f.value.String()
		case FieldStep:
			step = f.value.String()
		case FieldPage:
			page = f.value.String()
		case FieldEventType:
			event = f.value.String()
		case FieldRunID:
			runID = f.value.String()
		default:
			rest = append(rest, f)
		}
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, " %-5s ", r.Level.String())
	if component != "" {
		b.WriteString(component)
		b.WriteByte(' ')
	}
	switch {
	case step != "" && page != "":
		fmt.Fprintf(&b, "[%s page %s] ", step, page)
	case step != "":
		fmt.Fprintf(&b, "[%s] ", step)
	case page != "":
		rest = append(rest, field{key: FieldPage, value: slog.StringValue(page)})
	}

	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "-"
	}
	b.WriteString(msg)
	if h.source {
		if src := r.Source(); src != nil {
			fmt.Fprintf(&b, " (%s:%d)", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range rest {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(renderValue(f.value))
	}
	if event != "" {
		b.WriteString(" event=")
		b.WriteString(event)
	}
	if runID != "" {
		b.WriteString(" run=")
		b.WriteString(shortRunID(runID))
	}
	b.WriteByte('\n')
	return h.out.write([]byte(b.String()))
}

func appendField(dst []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, member := range a.Value.Group() {
			dst = appendField(dst, groupPrefix, member)
		}
		return dst
	}
	return append(dst, field{key: prefix + a.Key, value: a.Value})
}

func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// shortRunID keeps the first block of a UUID, enough to tell runs apart.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
