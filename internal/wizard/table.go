package wizard

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth truncates long titles and error messages.
const maxCellWidth = 40

// writeTable prints rows aligned on terminal cell width, so accented and
// wide characters do not break the columns.
func writeTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(header))
		for i := range header {
			if i >= len(row) {
				continue
			}
			c := runewidth.Truncate(row[i], maxCellWidth, "…")
			cells[r][i] = c
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	writeRow(w, header, widths)
	rule := make([]string, len(header))
	for i, n := range widths {
		rule[i] = strings.Repeat("─", n)
	}
	writeRow(w, rule, widths)
	for _, row := range cells {
		writeRow(w, row, widths)
	}
}

//nolint:errcheck // terminal output
func writeRow(w io.Writer, row []string, widths []int) {
	parts := make([]string, len(row))
	for i, c := range row {
		if i == len(row)-1 {
			parts[i] = c
			continue
		}
		parts[i] = runewidth.FillRight(c, widths[i])
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}
