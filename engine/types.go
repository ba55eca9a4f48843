package engine

import (
	"github.com/spektr-org/tabula/schema"
	"github.com/spektr-org/tabula/table"
)

// ============================================================================
// ENGINE TYPES — Render-ready output
// ============================================================================

// Result is a snapshot of a session: everything a rendering layer needs to
// draw the filter panel, the chart and the data table.
type Result struct {
	Catalog schema.Catalog       `json:"columns" yaml:"columns"`
	Filters map[string]FilterDoc `json:"filters" yaml:"filters"`
	Chart   ChartFields          `json:"chart" yaml:"chart"`

	// Rows are the filtered rows; Records are the plot records built from
	// them.
	Rows    []table.Row `json:"rows" yaml:"rows"`
	Records []table.Row `json:"records" yaml:"records"`

	Summary Summary  `json:"summary" yaml:"summary"`
	Preview *Preview `json:"preview" yaml:"preview"`
}

// ============================================================================
// PREVIEW TYPES
// ============================================================================

// Preview is a bounded, display-formatted view of rows.
type Preview struct {
	Columns []PreviewColumn `json:"columns" yaml:"columns"`
	Rows    [][]string      `json:"rows" yaml:"rows"`
	Shown   int             `json:"shown" yaml:"shown"`
	Total   int             `json:"total" yaml:"total"`
	Note    string          `json:"note,omitempty" yaml:"note,omitempty"` // set when rows were truncated
}

// PreviewColumn defines a preview column and its kind badge.
type PreviewColumn struct {
	Name  string      `json:"name" yaml:"name"`
	Kind  schema.Kind `json:"type" yaml:"type"`
	Align string      `json:"align" yaml:"align"` // "left", "right"
}

// ============================================================================
// SUMMARY TYPES
// ============================================================================

// Summary describes how much of the dataset the current filters keep.
type Summary struct {
	TotalRows     int    `json:"totalRows" yaml:"totalRows"`
	FilteredRows  int    `json:"filteredRows" yaml:"filteredRows"`
	Columns       int    `json:"columns" yaml:"columns"`
	ActiveFilters int    `json:"activeFilters" yaml:"activeFilters"`
	Text          string `json:"text" yaml:"text"`
}
