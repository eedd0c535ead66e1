package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/mazdak/lazyredis/internal/redisx"
)

// padRight pads a string with spaces to fill width terminal cells.
// Uses lipgloss.Width to correctly handle ANSI codes and full-width characters.
func padRight(s string, width int) string {
	sw := lipgloss.Width(s)
	if sw >= width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-sw)
}

// truncateRunes truncates a string to fit within maxWidth terminal cells.
// Uses runewidth so full-width characters (CJK, emoji) count as 2 cells.
// Newlines and tabs are flattened so one list row stays one terminal row.
// A non-positive width (narrow panels subtract fixed header widths) yields
// the empty string.
func truncateRunes(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")

	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// ellipsize shortens s to at most max runes for flash messages and
// confirmation prompts.
func ellipsize(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// formatTTL renders a TTL in seconds the way the key header shows it:
// no expiry, a humanized countdown, or a dash for a vanished key.
func formatTTL(seconds int64) string {
	switch {
	case seconds == -1:
		return "none"
	case seconds < 0:
		return "-"
	default:
		return redisx.FormatDuration(seconds)
	}
}

// formatKeyCount renders the enumerated key total for the header.
func formatKeyCount(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%.1fK", float64(n)/1000)
}
