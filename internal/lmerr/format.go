package lmerr

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumesh-lang/lumesh/internal/token"
)

// Grounded on the teacher's cli/errors.go FormatError (a Colorize-wrapped
// "Error: <message>" line per error kind); adapted from a fixed
// CLIError/PlanError type switch to the spec §4.7 formatting contract
// itself: print the offending source line plus a `^~~` column pointer.
// Uses lipgloss (already a project dependency for internal/highlight)
// instead of hand-rolled ANSI escape constants.
var (
	formatErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	formatLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	formatPointStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Format renders err (a *SyntaxError or *RuntimeError) the way spec §4.7
// requires: a colored "Kind: message" header, the offending source line,
// and a `^~~` pointer under the exact column range. Any other error type
// falls back to its bare Error() text.
func Format(err error, useColor bool) string {
	switch e := err.(type) {
	case *SyntaxError:
		return format(e.Kind, e.Message, e.Span, e.Src, useColor)
	case *RuntimeError:
		return format(e.Kind, e.Message, e.Site, e.Src, useColor)
	default:
		if err == nil {
			return ""
		}
		return err.Error()
	}
}

func format(kind fmt.Stringer, message string, span token.StrSlice, src string, useColor bool) string {
	var b strings.Builder
	header := fmt.Sprintf("%s: %s", kind, message)
	if useColor {
		header = formatErrorStyle.Render(header)
	}
	b.WriteString(header)
	b.WriteByte('\n')

	line, col, width := locate(src, span)
	if line == "" {
		return b.String()
	}
	rendered := line
	if useColor {
		rendered = formatLineStyle.Render(line)
	}
	b.WriteString(rendered)
	b.WriteByte('\n')

	pointer := strings.Repeat(" ", col) + "^" + strings.Repeat("~", max0(width-1))
	if useColor {
		pointer = formatPointStyle.Render(pointer)
	}
	b.WriteString(pointer)
	return b.String()
}

// locate returns the full source line containing span.Start, the 0-based
// column of span.Start within that line, and the span's width (clamped to
// the line's remaining length so a pointer never overruns it).
func locate(src string, span token.StrSlice) (line string, col, width int) {
	if span.Start < 0 || span.Start > len(src) {
		return "", 0, 0
	}
	lineStart := strings.LastIndexByte(src[:span.Start], '\n') + 1
	lineEnd := len(src)
	if idx := strings.IndexByte(src[span.Start:], '\n'); idx >= 0 {
		lineEnd = span.Start + idx
	}
	line = src[lineStart:lineEnd]
	col = span.Start - lineStart
	width = span.End - span.Start
	if col+width > len(line) {
		width = len(line) - col
	}
	if width < 1 {
		width = 1
	}
	return line, col, width
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
