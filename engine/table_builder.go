package engine

import (
	"github.com/spektr-org/tabula/schema"
	"github.com/spektr-org/tabula/table"
)

// ============================================================================
// TABLE BUILDER — Bounded, display-formatted preview of rows
// ============================================================================

// BuildPreview renders the first maxRows rows with cells formatted by their
// column kind. Columns missing from the catalog are treated as strings.
// maxRows <= 0 shows every row.
func BuildPreview(headers []string, rows []table.Row, catalog schema.Catalog, maxRows int) *Preview {
	columns := make([]PreviewColumn, len(headers))
	for i, h := range headers {
		kind := schema.KindString
		if col, ok := catalog.Lookup(h); ok {
			kind = col.Kind
		}
		align := "left"
		if kind == schema.KindNumber {
			align = "right"
		}
		columns[i] = PreviewColumn{Name: h, Kind: kind, Align: align}
	}

	shown := len(rows)
	if maxRows > 0 && shown > maxRows {
		shown = maxRows
	}

	out := make([][]string, shown)
	for i, row := range rows[:shown] {
		cells := make([]string, len(columns))
		for j, col := range columns {
			cells[j] = schema.FormatValue(row.Get(col.Name), col.Kind)
		}
		out[i] = cells
	}

	preview := &Preview{
		Columns: columns,
		Rows:    out,
		Shown:   shown,
		Total:   len(rows),
	}
	if shown < len(rows) {
		preview.Note = printer().Sprintf("Showing %d of %d rows", shown, len(rows))
	}
	return preview
}
