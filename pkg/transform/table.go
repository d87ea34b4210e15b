package transform

import (
	"github.com/yaklabco/htmlmd/pkg/mdast"
)

// normalizeTable puts the header row first, expands column and row spans
// into empty cells, squares every row to the header width and resolves
// column alignment.
func (r *run) normalizeTable(tbl *mdast.Node) {
	rows := tableRows(tbl)
	if len(rows) == 0 {
		return
	}

	for _, row := range rows {
		if r.headRows[row] {
			if row != rows[0] {
				mdast.InsertBefore(rows[0], row)
				rows = tableRows(tbl)
			}
			break
		}
	}

	r.expandSpans(rows)

	width := rows[0].ChildCount()
	if width == 0 {
		for _, row := range rows {
			width = max(width, row.ChildCount())
		}
	}
	if width == 0 {
		for _, row := range rows {
			mdast.RemoveChild(tbl, row)
		}
		return
	}

	for _, row := range rows {
		count := 0
		for cell := row.FirstChild; cell != nil; {
			next := cell.Next
			count++
			if count > width {
				mdast.RemoveChild(row, cell)
			}
			cell = next
		}
		for ; count < width; count++ {
			mdast.AppendChild(row, mdast.NewNode(mdast.NodeTableCell))
		}
	}

	tbl.Block.Table.Align = r.columnAlign(rows, width)
}

func tableRows(tbl *mdast.Node) []*mdast.Node {
	var rows []*mdast.Node
	for child := tbl.FirstChild; child != nil; child = child.Next {
		if child.Kind == mdast.NodeTableRow {
			rows = append(rows, child)
		}
	}
	return rows
}

// expandSpans rebuilds each row so a cell with colspan=N is followed by N-1
// empty cells and a cell with rowspan=N leaves an empty cell in the same
// column of the next N-1 rows.
func (r *run) expandSpans(rows []*mdast.Node) {
	pending := make(map[int]int)

	for _, row := range rows {
		cells := row.Children()
		out := make([]*mdast.Node, 0, len(cells))
		col := 0

		fill := func() {
			for pending[col] > 0 {
				pending[col]--
				out = append(out, mdast.NewNode(mdast.NodeTableCell))
				col++
			}
		}

		for _, cell := range cells {
			fill()
			meta := r.cells[cell]
			span := min(max(meta.colspan, 1), maxColspan)
			out = append(out, cell)
			if rowspan := min(meta.rowspan, maxRowspan); rowspan > 1 {
				for c := col; c < col+span; c++ {
					pending[c] = rowspan - 1
				}
			}
			for range span - 1 {
				out = append(out, mdast.NewNode(mdast.NodeTableCell))
			}
			col += span
		}

		// Spans reaching past the last cell of this row.
		last := -1
		for c, n := range pending {
			if c >= col && n > 0 && c > last {
				last = c
			}
		}
		for ; col <= last; col++ {
			if pending[col] > 0 {
				pending[col]--
			}
			out = append(out, mdast.NewNode(mdast.NodeTableCell))
		}

		for _, cell := range cells {
			mdast.RemoveChild(row, cell)
		}
		for _, cell := range out {
			mdast.AppendChild(row, cell)
		}
	}
}

// columnAlign takes each column's alignment from the header cell, falling
// back to the first body cell carrying one. Rows are walked once each; every
// row already has exactly width cells.
func (r *run) columnAlign(rows []*mdast.Node, width int) []mdast.Align {
	align := make([]mdast.Align, width)
	for _, row := range rows {
		col := 0
		for cell := row.FirstChild; cell != nil && col < width; cell = cell.Next {
			if align[col] == mdast.AlignNone {
				align[col] = r.cells[cell].align
			}
			col++
		}
	}
	return align
}
