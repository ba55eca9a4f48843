package schema

import (
	"math"

	"github.com/spektr-org/tabula/table"
)

// ============================================================================
// TYPE INFERENCE — Heuristic column classification
// ============================================================================
// Classification pipeline per column:
//   1. Collect non-empty values (Null and "" are dropped)
//   2. Numeric test: every value parses to a finite number → number
//   3. Date test: strictly more than 80% of values parse as dates → date
//   4. Fallback: string, with first-occurrence distinct values
//
// The numeric test always runs first, so a column of plain years is a
// number column even though every value is also a valid date.
// ============================================================================

// MaxUniqueValues caps the distinct values recorded for a string column.
const MaxUniqueValues = 100

// dateThreshold is the share of parseable values a column must exceed to be
// classified as a date. The comparison is strict.
const dateThreshold = 0.8

// Infer classifies every column of rows. Column names come from the first
// row; all rows are assumed to share its keys. Empty input yields an empty
// catalog.
func Infer(rows []table.Row) Catalog {
	if len(rows) == 0 {
		return Catalog{}
	}

	headers := rows[0].Keys()
	catalog := make(Catalog, len(headers))
	for i, header := range headers {
		catalog[i] = analyzeColumn(header, rows)
	}
	return catalog
}

// analyzeColumn inspects all values in one column and classifies it.
func analyzeColumn(header string, rows []table.Row) ColumnType {
	col := ColumnType{Name: header, Kind: KindString}

	values := make([]table.Value, 0, len(rows))
	for _, row := range rows {
		v := row.Get(header)
		if v.IsEmpty() {
			continue
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return col
	}

	if lo, hi, ok := numericRange(values); ok {
		col.Kind = KindNumber
		col.Min = &lo
		col.Max = &hi
		return col
	}

	if isDateColumn(values) {
		col.Kind = KindDate
		return col
	}

	col.UniqueValues = distinctValues(values, MaxUniqueValues)
	return col
}

// numericRange reports whether every value parses to a finite number and
// returns the range. A single non-numeric value disqualifies the column.
func numericRange(values []table.Value) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		f := table.ParseFloat(v.String())
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, 0, false
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	return lo, hi, true
}

func isDateColumn(values []table.Value) bool {
	parsed := 0
	for _, v := range values {
		if _, ok := ParseDate(v.String()); ok {
			parsed++
		}
	}
	return float64(parsed) > float64(len(values))*dateThreshold
}

// distinctValues returns up to limit distinct values in first-occurrence
// order.
func distinctValues(values []table.Value, limit int) []table.Value {
	seen := make(map[table.Value]bool, min(len(values), limit))
	out := make([]table.Value, 0, min(len(values), limit))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}
