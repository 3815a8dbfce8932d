// Package formatter lays out plain-text tables for the processing report.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Alignment positions a cell inside its column.
type Alignment int

// Column alignments.
const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table is a set of rows laid out in columns padded by display width,
// so emoji and CJK titles line up with ASCII ones.
type Table struct {
	Indent    string
	Separator string
	Align     []Alignment
	rows      [][]string
}

// NewTable creates a table with two-space indentation and a two-space column gap.
func NewTable(align ...Alignment) *Table {
	return &Table{Indent: "  ", Separator: "  ", Align: align}
}

// AddRow appends a row. Rows may have different lengths.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Lines renders the table, one string per row, without trailing spaces.
func (t *Table) Lines() []string {
	if len(t.rows) == 0 {
		return nil
	}

	colCount := 0
	for _, row := range t.rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	// Calculate max widths (using display width)
	colWidths := make([]int, colCount)

	for _, row := range t.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	result := make([]string, 0, len(t.rows))

	for _, row := range t.rows {
		var sb strings.Builder

		sb.WriteString(t.Indent)

		for j := 0; j < colCount; j++ {
			if j > 0 {
				sb.WriteString(t.Separator)
			}

			content := ""
			if j < len(row) {
				content = row[j]
			}

			padding := strings.Repeat(" ", colWidths[j]-runewidth.StringWidth(content))

			if t.alignment(j) == AlignRight {
				sb.WriteString(padding)
				sb.WriteString(content)
			} else {
				sb.WriteString(content)
				sb.WriteString(padding)
			}
		}

		result = append(result, strings.TrimRight(sb.String(), " "))
	}

	return result
}

// String renders the table joined by newlines.
func (t *Table) String() string {
	return strings.Join(t.Lines(), "\n")
}

func (t *Table) alignment(col int) Alignment {
	if col < len(t.Align) {
		return t.Align[col]
	}

	return AlignLeft
}
