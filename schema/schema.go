package schema

import (
	"fmt"

	"github.com/spektr-org/tabula/table"
)

// ============================================================================
// SCHEMA — Column catalog inferred from a loaded dataset
// ============================================================================
// The catalog drives the filter and chart configuration surfaces: which
// filter a column gets, which columns can be plotted as series, and which
// values a text filter offers. It is computed once per dataset.
// ============================================================================

// Kind classifies a column. Kinds are mutually exclusive.
type Kind string

const (
	KindNumber Kind = "number"
	KindString Kind = "string"
	KindDate   Kind = "date"
)

// ParseKind resolves a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindNumber, KindString, KindDate:
		return k, nil
	default:
		return "", fmt.Errorf("unknown column kind %q", s)
	}
}

// ColumnType describes one column of the dataset.
type ColumnType struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"type" yaml:"type"`

	// Min and Max are set only for number columns.
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`

	// UniqueValues holds distinct values in order of first occurrence,
	// capped at MaxUniqueValues. Set only for string columns.
	UniqueValues []table.Value `json:"uniqueValues,omitempty" yaml:"uniqueValues,omitempty"`
}

// Catalog is the ordered list of column types for a dataset, one per header.
type Catalog []ColumnType

// Lookup returns the column type with the given name.
func (c Catalog) Lookup(name string) (ColumnType, bool) {
	for _, col := range c {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnType{}, false
}

// Names returns all column names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, col := range c {
		names[i] = col.Name
	}
	return names
}

// OfKind returns the columns classified as k, in catalog order.
func (c Catalog) OfKind(k Kind) []ColumnType {
	var out []ColumnType
	for _, col := range c {
		if col.Kind == k {
			out = append(out, col)
		}
	}
	return out
}

// FirstOfKind returns the name of the first column classified as k, or "".
func (c Catalog) FirstOfKind(k Kind) string {
	for _, col := range c {
		if col.Kind == k {
			return col.Name
		}
	}
	return ""
}
