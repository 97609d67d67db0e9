package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Widths are display columns, offsets are rune indexes. Items are edited in
// rune offsets while the screen is laid out in columns, so every helper
// here converts between the two.

// RuneWidth returns the display width of a single rune. Control and
// combining characters take no column.
func RuneWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w < 0 {
		return 0
	}
	return w
}

// StringWidth returns the display width of a string
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateToWidth cuts s so it fits within maxWidth columns without
// splitting a rune
func TruncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	width := 0
	for i, r := range s {
		rw := RuneWidth(r)
		if width+rw > maxWidth {
			return s[:i]
		}
		width += rw
	}
	return s
}

// TruncateWithEllipsis truncates s with "…" if it exceeds maxWidth
func TruncateWithEllipsis(s string, maxWidth int) string {
	if StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return TruncateToWidth(s, maxWidth)
	}
	return TruncateToWidth(s, maxWidth-1) + "…"
}

// PadToWidth pads s with spaces up to width columns
func PadToWidth(s string, width int) string {
	current := StringWidth(s)
	if current >= width {
		return s
	}
	return s + strings.Repeat(" ", width-current)
}

// ColumnOf returns the display column of rune offset in s
func ColumnOf(s string, offset int) int {
	col := 0
	for i, r := range []rune(s) {
		if i >= offset {
			break
		}
		col += RuneWidth(r)
	}
	return col
}

// ScrollStart returns the first rune to draw so that the caret at rune
// offset caret stays visible in a field of width columns.
func ScrollStart(s string, caret, width int) int {
	if width <= 0 {
		return caret
	}
	runes := []rune(s)
	if caret > len(runes) {
		caret = len(runes)
	}
	// One column is kept for the caret itself
	start := caret
	used := 1
	for start > 0 {
		rw := RuneWidth(runes[start-1])
		if used+rw > width {
			break
		}
		used += rw
		start--
	}
	return start
}
