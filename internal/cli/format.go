// Package cli provides formatting and rendering helpers for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"
)

// FormatPlaytime renders seconds as HH:MM:SS, the shape every report table
// and chart label uses.
func FormatPlaytime(secs float64) string {
	total := int64(math.Round(secs))
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatHours renders seconds as a decimal hour count for chart axes.
func FormatHours(secs float64) string {
	return fmt.Sprintf("%.2fh", secs/3600)
}

// FormatBool renders a flag value the way verbose tables mark it: an X for
// true, blank for false.
func FormatBool(v bool) string {
	if v {
		return "X"
	}
	return ""
}

// Truncate shortens a string to maxLen runes, ellipsis included.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 1 {
		return ""
	}
	return string(runes[:maxLen-1]) + "…"
}

// PadLines indents every line of a block by two spaces.
func PadLines(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
