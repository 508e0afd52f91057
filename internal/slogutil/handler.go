// Package slogutil provides the slog handler and helpers used for scancmp logging.
package slogutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Attribute keys with special rendering.
const (
	// CaseKey names the fixture case a record belongs to. Its value is
	// printed in parentheses before the message instead of as key=value.
	CaseKey = "case"

	// PathKey holds a fixture or result path, shown relative to the
	// handler's base directory with forward slashes.
	PathKey = "path"
)

// LineHandler is a slog handler writing one line per record:
// TIMESTAMP [level] (case) Message | key=value key=value
type LineHandler struct {
	w      io.Writer
	level  slog.Leveler
	base   string
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

// Options configures a LineHandler.
type Options struct {
	// Level is the minimum level written. Defaults to slog.LevelInfo.
	Level slog.Leveler

	// BaseDir is the directory paths are shown relative to. Paths are
	// shown as given when empty.
	BaseDir string
}

// NewLineHandler creates a new line handler.
func NewLineHandler(w io.Writer, opts *Options) *LineHandler {
	h := &LineHandler{
		w:     w,
		level: slog.LevelInfo,
		mu:    &sync.Mutex{},
	}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.base = opts.BaseDir
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the log record.
func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString(r.Time.UTC().Format(time.RFC3339))

	buf.WriteString(" [")
	buf.WriteString(levelString(r.Level))
	buf.WriteString("] ")

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = h.appendAttr(attrs, a)
		return true
	})

	// The innermost case wins.
	caseName := ""
	fields := attrs[:0:0]
	for _, a := range attrs {
		if a.Key == CaseKey {
			caseName = a.Value.String()
			continue
		}
		fields = append(fields, a)
	}
	if caseName != "" {
		buf.WriteString("(")
		buf.WriteString(caseName)
		buf.WriteString(") ")
	}

	buf.WriteString(r.Message)

	if len(fields) > 0 {
		buf.WriteString(" |")
		for _, a := range fields {
			buf.WriteString(" ")
			buf.WriteString(a.Key)
			buf.WriteString("=")
			buf.WriteString(h.formatAttr(a))
		}
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs returns a new handler with the given attributes added.
func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)

	for _, a := range attrs {
		newAttrs = h.appendAttr(newAttrs, a)
	}

	return &LineHandler{
		w:      h.w,
		level:  h.level,
		base:   h.base,
		attrs:  newAttrs,
		groups: h.groups,
		mu:     h.mu,
	}
}

// WithGroup returns a new handler with the given group name added.
func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name

	return &LineHandler{
		w:      h.w,
		level:  h.level,
		base:   h.base,
		attrs:  h.attrs,
		groups: newGroups,
		mu:     h.mu,
	}
}

// appendAttr resolves a, flattens groups into dotted keys and prefixes the
// open groups. Empty keys are dropped. A top-level case attribute keeps its
// key so Handle can find it.
func (h *LineHandler) appendAttr(attrs []slog.Attr, a slog.Attr) []slog.Attr {
	return appendFlat(attrs, h.groups, a)
}

func appendFlat(attrs []slog.Attr, groups []string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			groups = append(groups[:len(groups):len(groups)], a.Key)
		}
		for _, ga := range a.Value.Group() {
			attrs = appendFlat(attrs, groups, ga)
		}
		return attrs
	}
	if a.Key == "" {
		return attrs
	}
	if len(groups) > 0 {
		a.Key = strings.Join(groups, ".") + "." + a.Key
	}
	return append(attrs, a)
}

// formatAttr renders path attributes relative to the base directory.
func (h *LineHandler) formatAttr(a slog.Attr) string {
	if a.Value.Kind() == slog.KindString && (a.Key == PathKey || strings.HasSuffix(a.Key, "."+PathKey)) {
		return formatValue(slog.StringValue(h.displayPath(a.Value.String())))
	}
	return formatValue(a.Value)
}

// displayPath returns path relative to the base directory when it lies
// inside it, always with forward slashes.
func (h *LineHandler) displayPath(path string) string {
	if h.base != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(h.base, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

// formatValue quotes strings containing spaces so lines stay splittable.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\n") {
			return fmt.Sprintf("%q", s)
		}
		return s
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return fmt.Sprint(v.Any())
	}
}
