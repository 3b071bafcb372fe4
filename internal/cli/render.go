package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/aislog/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned, the rest right-aligned.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		if len(h) > widths[i] {
			widths[i] = len(h)
		}
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	writeRule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	writeRule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		writeRule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			b.WriteString(valueStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	writeRule("╰", "┴", "╯")
	return b.String()
}

// RenderKeyValues renders an aligned key/value block.
func RenderKeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString("  ")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", width+2, p[0])))
		b.WriteString(valueStyle.Render(p[1]))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSparkline generates a unicode block sparkline from a series of values.
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
	return b.String()
}

// RenderHeatmap renders the weekday x hour activity grid. Rows are weekdays,
// columns the 24 hours; cell shade tracks activity count.
func RenderHeatmap(cells []model.ActivityHeatmapCell) string {
	if len(cells) == 0 {
		return ""
	}

	grid := make(map[[2]uint8]uint32, len(cells))
	var max uint32
	for _, c := range cells {
		grid[[2]uint8{c.Day, c.Hour}] = c.ActivityCount
		if c.ActivityCount > max {
			max = c.ActivityCount
		}
	}
	if max == 0 {
		return ""
	}

	shades := []rune{' ', '░', '▒', '▓', '█'}

	var b strings.Builder
	b.WriteString(mutedStyle.Render("       0    4    8    12   16   20"))
	b.WriteString("\n")
	for day := uint8(0); day < 7; day++ {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s  ", FormatDayOfWeek(int(day)))))
		var row strings.Builder
		for hour := uint8(0); hour < 24; hour++ {
			count := grid[[2]uint8{day, hour}]
			idx := int(count * uint32(len(shades)-1) / max)
			row.WriteRune(shades[idx])
		}
		b.WriteString(valueStyle.Render(row.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTokenDistribution renders the four token counters as one line.
func RenderTokenDistribution(d model.TokenDistribution) string {
	return fmt.Sprintf("in %s / out %s / cache-write %s / cache-read %s",
		FormatTokens(d.Input), FormatTokens(d.Output),
		FormatTokens(d.CacheCreation), FormatTokens(d.CacheRead))
}
