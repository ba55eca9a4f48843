package engine

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/spektr-org/tabula/schema"
	"github.com/spektr-org/tabula/table"
)

// ============================================================================
// FILTERS — Per-column predicates, ANDed across columns
// ============================================================================
// Each filter is compiled once per call into a predicate over the raw cell,
// then rows are checked in a single pass. Cells are re-parsed from their
// string form on every evaluation; nothing is pre-typed.
//
// A Null cell fails every active filter, whatever its kind. Unknown kinds
// pass everything else.
// ============================================================================

// FilterKind tags a FilterSpec variant.
type FilterKind string

const (
	FilterText   FilterKind = "text"
	FilterNumber FilterKind = "number"
	FilterDate   FilterKind = "date"
)

// FilterSpec is a closed set of per-column predicates: TextFilter,
// NumberFilter, DateFilter and UnknownFilter.
type FilterSpec interface {
	Kind() FilterKind
	compile() predicate
}

type predicate func(table.Value) bool

// TextFilter keeps rows whose cell is exactly one of Values. An empty
// Values places no restriction.
type TextFilter struct {
	Values []table.Value `json:"values"`
}

func (TextFilter) Kind() FilterKind { return FilterText }

func (f TextFilter) compile() predicate {
	if len(f.Values) == 0 {
		return func(table.Value) bool { return true }
	}
	allowed := make(map[table.Value]struct{}, len(f.Values))
	for _, v := range f.Values {
		allowed[v] = struct{}{}
	}
	return func(v table.Value) bool {
		_, ok := allowed[v]
		return ok
	}
}

func (f TextFilter) String() string {
	if len(f.Values) == 0 {
		return "any"
	}
	parts := make([]string, len(f.Values))
	for i, v := range f.Values {
		parts[i] = v.String()
	}
	return "in [" + strings.Join(parts, ", ") + "]"
}

// NumberFilter keeps rows whose cell parses to a number within the
// inclusive bounds. A nil bound is open.
type NumberFilter struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (NumberFilter) Kind() FilterKind { return FilterNumber }

func (f NumberFilter) compile() predicate {
	return func(v table.Value) bool {
		n := v.Float()
		if math.IsNaN(n) {
			return false
		}
		if f.Min != nil && n < *f.Min {
			return false
		}
		if f.Max != nil && n > *f.Max {
			return false
		}
		return true
	}
}

func (f NumberFilter) String() string {
	switch {
	case f.Min != nil && f.Max != nil:
		return fmt.Sprintf("%s..%s", table.FormatNumber(*f.Min), table.FormatNumber(*f.Max))
	case f.Min != nil:
		return ">= " + table.FormatNumber(*f.Min)
	case f.Max != nil:
		return "<= " + table.FormatNumber(*f.Max)
	default:
		return "any"
	}
}

// DateFilter keeps rows whose cell parses as a date within the inclusive
// range. A nil bound is open.
type DateFilter struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

func (DateFilter) Kind() FilterKind { return FilterDate }

func (f DateFilter) compile() predicate {
	return func(v table.Value) bool {
		t, ok := schema.ParseDate(v.String())
		if !ok {
			return false
		}
		if f.Start != nil && t.Before(*f.Start) {
			return false
		}
		if f.End != nil && t.After(*f.End) {
			return false
		}
		return true
	}
}

func (f DateFilter) String() string {
	var start, end string
	if f.Start != nil {
		start = f.Start.Format(schema.DisplayDateLayout)
	}
	if f.End != nil {
		end = f.End.Format(schema.DisplayDateLayout)
	}
	if start == "" && end == "" {
		return "any"
	}
	return start + ".." + end
}

// UnknownFilter carries a filter kind this package does not evaluate. It
// passes every non-null cell.
type UnknownFilter struct {
	Type string `json:"type"`
}

func (f UnknownFilter) Kind() FilterKind { return FilterKind(f.Type) }

func (UnknownFilter) compile() predicate {
	return func(table.Value) bool { return true }
}

func (f UnknownFilter) String() string { return "any (" + f.Type + ")" }

// Match reports whether a single cell passes spec.
func Match(spec FilterSpec, v table.Value) bool {
	if v.IsNull() {
		return false
	}
	return spec.compile()(v)
}

// DefaultFilter returns the filter a column starts with when it is first
// added: number columns are seeded with their observed range, date columns
// get an open range and string columns allow every value.
func DefaultFilter(col schema.ColumnType) FilterSpec {
	switch col.Kind {
	case schema.KindNumber:
		return NumberFilter{Min: copyBound(col.Min), Max: copyBound(col.Max)}
	case schema.KindDate:
		return DateFilter{}
	default:
		return TextFilter{}
	}
}

// copyBound detaches a filter bound from the catalog it was read from.
func copyBound(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ============================================================================
// FILTER STATE
// ============================================================================

// FilterState maps column names to their filter. Columns without an entry
// are unfiltered.
type FilterState map[string]FilterSpec

// With returns a copy of fs with column's filter set to spec.
func (fs FilterState) With(column string, spec FilterSpec) FilterState {
	out := maps.Clone(fs)
	if out == nil {
		out = FilterState{}
	}
	out[column] = spec
	return out
}

// Without returns a copy of fs with column's filter removed.
func (fs FilterState) Without(column string) FilterState {
	out := maps.Clone(fs)
	delete(out, column)
	return out
}

// Columns returns the filtered column names, sorted.
func (fs FilterState) Columns() []string {
	return slices.Sorted(maps.Keys(fs))
}

// ============================================================================
// EVALUATION
// ============================================================================

type compiledFilter struct {
	column string
	pass   predicate
}

// ApplyFilters returns the rows that satisfy every filter in filters, in
// their original order. The result is always a new slice, even when no
// filter is active.
//
// The catalog is not consulted: a filter's own kind decides how the cell is
// evaluated.
func ApplyFilters(rows []table.Row, filters FilterState, _ schema.Catalog) []table.Row {
	out := make([]table.Row, 0, len(rows))
	if len(filters) == 0 {
		return append(out, rows...)
	}

	compiled := make([]compiledFilter, 0, len(filters))
	for _, column := range filters.Columns() {
		spec := filters[column]
		if spec == nil {
			continue
		}
		compiled = append(compiled, compiledFilter{column: column, pass: spec.compile()})
	}

	for _, row := range rows {
		if keep(row, compiled) {
			out = append(out, row)
		}
	}
	return out
}

func keep(row table.Row, filters []compiledFilter) bool {
	for _, f := range filters {
		v := row.Get(f.column)
		if v.IsNull() || !f.pass(v) {
			return false
		}
	}
	return true
}
