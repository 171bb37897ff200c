package output

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableFormatter renders aligned, styled tables for terminal display.
// Sizes are human-readable.
type TableFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TableFormatter) Format(w *bytes.Buffer, r *Report) error {
	for i, s := range sections(r, true) {
		if i > 0 {
			w.WriteString("\n")
		}
		w.WriteString(TitleStyle.Render(s.title))
		w.WriteString("\n")
		w.WriteString(renderTable(s, r.Binding))
	}
	return nil
}

func renderTable(s section, binding *Binding) string {
	widths := make([]int, len(s.header))
	for i, h := range s.header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range s.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(renderRow(s.header, widths, HeaderStyle))
	for _, row := range s.rows {
		style := CellStyle
		if binding != nil && len(row) > 1 && row[0] == "bound" {
			style = ErrorStyle
			if binding.Bound {
				style = SuccessStyle
			}
		}
		b.WriteString(renderRow(row, widths, style))
	}
	return b.String()
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i == len(cells)-1 {
			parts[i] = style.Render(cell)
			continue
		}
		parts[i] = style.Width(widths[i]).Render(cell)
	}
	return strings.Join(parts, "  ") + "\n"
}

func init() {
	Register("table", func() Formatter {
		return &TableFormatter{}
	})
}

var _ Formatter = (*TableFormatter)(nil)
