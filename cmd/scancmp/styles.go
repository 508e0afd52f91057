package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPass    = lipgloss.Color("#00D26A")
	colorFail    = lipgloss.Color("#FF3838")
	colorMuted   = lipgloss.Color("#6B7280")
	colorHunk    = lipgloss.Color("#4D96FF")
	colorWarning = lipgloss.Color("#FFB800")
)

// styles renders status words and diffs for one output stream. Colors are
// dropped when the stream is not a terminal.
type styles struct {
	pass    lipgloss.Style
	fail    lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	hunk    lipgloss.Style
	muted   lipgloss.Style
	hint    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		pass:    r.NewStyle().Foreground(colorPass).Bold(true),
		fail:    r.NewStyle().Foreground(colorFail).Bold(true),
		added:   r.NewStyle().Foreground(colorPass),
		removed: r.NewStyle().Foreground(colorFail),
		hunk:    r.NewStyle().Foreground(colorHunk),
		muted:   r.NewStyle().Foreground(colorMuted),
		hint:    r.NewStyle().Foreground(colorWarning).Italic(true),
	}
}

// colorize styles the lines of a diff or error text one by one.
func (s styles) colorize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = s.muted.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = s.hunk.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = s.added.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = s.removed.Render(line)
		case strings.HasPrefix(strings.TrimSpace(line), "hint:"), strings.HasPrefix(line, "Run with "):
			lines[i] = s.hint.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
