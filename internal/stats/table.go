// Package stats contains statistics calculations and reporting.
package stats

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

type align int

const (
	alignLeft align = iota
	alignRight
)

type column struct {
	title string
	align align
}

func left(title string) column  { return column{title: title, align: alignLeft} }
func right(title string) column { return column{title: title, align: alignRight} }

// textTable lays out plain-text rows under a header, one space between
// columns. Widths are measured in terminal cells so book names in any
// script line up.
type textTable struct {
	cols []column
	rows [][]string
}

func newTable(cols ...column) *textTable {
	return &textTable{cols: cols}
}

// addRow appends a row. Missing cells render empty; cells past the last
// column are dropped.
func (t *textTable) addRow(cells ...string) {
	row := make([]string, len(t.cols))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *textTable) lines() []string {
	if len(t.cols) == 0 {
		return nil
	}
	header := make([]string, len(t.cols))
	widths := make([]int, len(t.cols))
	for i, c := range t.cols {
		header[i] = c.title
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	out := make([]string, 0, len(t.rows)+1)
	out = append(out, t.formatRow(header, widths))
	for _, row := range t.rows {
		out = append(out, t.formatRow(row, widths))
	}
	return out
}

func (t *textTable) write(w io.Writer) error {
	return writeLines(w, t.lines())
}

func (t *textTable) formatRow(row []string, widths []int) string {
	var b strings.Builder
	for i, cell := range row {
		if i > 0 {
			b.WriteByte(' ')
		}
		pad := strings.Repeat(" ", max(0, widths[i]-runewidth.StringWidth(cell)))
		if t.cols[i].align == alignRight {
			b.WriteString(pad + cell)
		} else {
			b.WriteString(cell + pad)
		}
	}
	return b.String()
}
