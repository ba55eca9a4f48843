package engine

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ============================================================================
// TEXT BUILDER — Short status lines for the current dataset and filters
// ============================================================================

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// BuildSummary reports how many of total rows survive the active filters.
func BuildSummary(total, filtered, columns int, filters FilterState) Summary {
	s := Summary{
		TotalRows:     total,
		FilteredRows:  filtered,
		Columns:       columns,
		ActiveFilters: len(filters),
	}

	p := printer()
	switch s.ActiveFilters {
	case 0:
		s.Text = p.Sprintf("%d of %d rows", filtered, total)
	case 1:
		s.Text = p.Sprintf("%d of %d rows (1 filter active)", filtered, total)
	default:
		s.Text = p.Sprintf("%d of %d rows (%d filters active)", filtered, total, s.ActiveFilters)
	}
	return s
}

// LoadMessage is the confirmation shown after a dataset is loaded.
func LoadMessage(rows, columns int) string {
	return printer().Sprintf("%d rows and %d columns detected.", rows, columns)
}
