package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MaxCellWidth caps the visible width of a table cell. Longer cells are
// truncated with an ellipsis.
const MaxCellWidth = 48

// RenderTable renders an aligned table with a header separator line.
// Columns are padded to the widest visible cell in each column.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	cols := len(headers)

	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, cols)
		for i := 0; i < cols && i < len(row); i++ {
			cells[r][i] = Truncate(row[i], MaxCellWidth)
		}
	}

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range cells {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const colGap = 2
	var b strings.Builder

	writeRow := func(row []string, style func(string) string) {
		for i, cell := range row {
			b.WriteString(style(cell))
			if i < cols-1 {
				pad := widths[i] - lipgloss.Width(cell)
				b.WriteString(strings.Repeat(" ", max(pad, 0)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return StyleHeader.Render(s) })

	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for _, row := range cells {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}
