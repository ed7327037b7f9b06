package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Nord-ish).
var (
	ColorText    = lipgloss.Color("#ECEFF4")
	ColorMuted   = lipgloss.Color("#626B7D")
	ColorBorder  = lipgloss.Color("#4C566A")
	ColorAccent  = lipgloss.Color("#88C0D0")
	ColorBar     = lipgloss.Color("#BF616A")
	ColorBarHigh = lipgloss.Color("#EBCB8B")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(ColorText)
	dimStyle    = lipgloss.NewStyle().Foreground(ColorBorder)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Align(lipgloss.Center)
	barStyle    = lipgloss.NewStyle().Foreground(ColorBar)
	barHiStyle  = lipgloss.NewStyle().Foreground(ColorBarHigh)
)

// Table is a bordered text table. A row of just "---" renders as a
// separator line; the print command uses that between date groups.
type Table struct {
	Headers []string
	Rows    [][]string
	// LeftAlign marks columns rendered flush left; all others are
	// right-aligned (numeric).
	LeftAlign map[int]bool
}

// RenderTitle renders a centered title in a rounded bordered box.
func RenderTitle(title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(titleStyle.Render(title))
}

// RenderTable renders the table with unicode borders.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			continue
		}
		for i, cell := range row {
			if w := len([]rune(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRule(&b, widths, "╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < cols; i++ {
			h := ""
			if i < len(t.Headers) {
				h = t.Headers[i]
			}
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		writeRule(&b, widths, "├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if isSeparator(row) {
			writeRule(&b, widths, "├", "┼", "┤")
			continue
		}
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			var padded string
			if t.LeftAlign[i] {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			b.WriteString(valueStyle.Render(padded))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	writeRule(&b, widths, "╰", "┴", "╯")
	return b.String()
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == "---"
}

func writeRule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

// RenderHorizontalBar renders one labelled bar scaled to maxValue. When
// highlight is set the bar uses the accent color; the plot command marks
// flag-filtered games this way.
func RenderHorizontalBar(label string, value, maxValue float64, width int, highlight bool) string {
	if maxValue <= 0 {
		maxValue = 1
	}
	n := int(value / maxValue * float64(width))
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}

	bar := strings.Repeat("█", n)
	style := barStyle
	if highlight {
		style = barHiStyle
	}
	return fmt.Sprintf("  %s %s %s",
		mutedStyle.Render(fmt.Sprintf("%-24s", Truncate(label, 24))),
		style.Render(bar),
		valueStyle.Render(FormatHours(value)),
	)
}

// RenderSparkline renders a unicode block sparkline for a value series.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / max * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}
	return barStyle.Render(b.String())
}
