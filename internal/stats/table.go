package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	alignLeft = iota
	alignRight
)

// table accumulates rows and renders them with terminal-cell alignment.
// Widths are measured in cells, not runes, so CJK names line up with
// ASCII headers.
type table struct {
	header []string
	align  []int
	rows   [][]string
}

func newTable(align []int, header ...string) *table {
	return &table{header: header, align: align}
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) writeTo(w io.Writer) error {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	if err := t.writeRow(w, t.header, widths); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := t.writeRow(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

func (t *table) writeRow(w io.Writer, cells []string, widths []int) error {
	parts := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := widths[i] - runewidth.StringWidth(cell)
		if pad < 0 {
			pad = 0
		}
		if i < len(t.align) && t.align[i] == alignRight {
			parts[i] = strings.Repeat(" ", pad) + cell
		} else {
			parts[i] = cell + strings.Repeat(" ", pad)
		}
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, " "), " "))
	return err
}
