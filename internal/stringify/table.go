package stringify

import (
	"strings"

	"github.com/rivo/uniseg"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

const minColumnWidth = 3

func (c *Context) table(n *east.Table) string {
	var rows [][]string
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		rows = append(rows, c.tableRow(row))
	}
	if len(rows) == 0 {
		return ""
	}

	columns := len(n.Alignments)
	for _, row := range rows {
		columns = max(columns, len(row))
	}
	widths := make([]int, columns)
	for i := range widths {
		widths[i] = minColumnWidth
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], uniseg.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		cells := make([]string, columns)
		for col := range cells {
			var value string
			if col < len(row) {
				value = row[col]
			}
			cells[col] = pad(value, widths[col], alignment(n, col))
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")

		if i == 0 {
			delims := make([]string, columns)
			for col := range delims {
				delims[col] = delimiter(widths[col], alignment(n, col))
			}
			lines = append(lines, "| "+strings.Join(delims, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n")
}

func (c *Context) tableRow(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, c.tableCell(cell))
	}
	return cells
}

func (c *Context) tableCell(cell ast.Node) string {
	defer c.Enter(ScopeTableCell)()
	return strings.ReplaceAll(c.Render(cell), "\n", " ")
}

func alignment(n *east.Table, col int) east.Alignment {
	if col < len(n.Alignments) {
		return n.Alignments[col]
	}
	return east.AlignNone
}

func pad(value string, width int, align east.Alignment) string {
	gap := width - uniseg.StringWidth(value)
	if gap <= 0 {
		return value
	}
	switch align {
	case east.AlignRight:
		return strings.Repeat(" ", gap) + value
	case east.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + value + strings.Repeat(" ", gap-left)
	default:
		return value + strings.Repeat(" ", gap)
	}
}

func delimiter(width int, align east.Alignment) string {
	switch align {
	case east.AlignLeft:
		return ":" + strings.Repeat("-", width-1)
	case east.AlignRight:
		return strings.Repeat("-", width-1) + ":"
	case east.AlignCenter:
		return ":" + strings.Repeat("-", width-2) + ":"
	default:
		return strings.Repeat("-", width)
	}
}
