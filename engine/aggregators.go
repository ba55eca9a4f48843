package engine

import (
	"github.com/spektr-org/tabula/table"
)

// ============================================================================
// AGGREGATORS — Category grouping for aggregation-mode charts
// ============================================================================

// categoryTotal is one group of sumByCategory.
type categoryTotal struct {
	name  string
	sum   float64
	count int
}

// groupByCategory sums value per distinct string form of category, in order
// of first occurrence. A Null category groups under "".
func groupByCategory(rows []table.Row, category, value string) []categoryTotal {
	index := make(map[string]int)
	groups := make([]categoryTotal, 0)

	for _, row := range rows {
		key := row.Get(category).String()
		i, exists := index[key]
		if !exists {
			i = len(groups)
			index[key] = i
			groups = append(groups, categoryTotal{name: key})
		}
		groups[i].sum += table.Coerce(row.Get(value))
		groups[i].count++
	}
	return groups
}

// sumByCategory emits one record per category shaped
// {category: name, value: sum}.
func sumByCategory(rows []table.Row, category, value string) []table.Row {
	groups := groupByCategory(rows, category, value)
	out := make([]table.Row, len(groups))
	for i, g := range groups {
		out[i] = table.NewRow(
			table.Field{Key: category, Value: table.Text(g.name)},
			table.Field{Key: value, Value: table.Number(g.sum)},
		)
	}
	return out
}

// Slice is one segment of a category breakdown.
type Slice struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
	Count int     `json:"count" yaml:"count"`
	Share float64 `json:"share" yaml:"share"` // Value / total of all slices, 0 when the total is 0
	Color string  `json:"color" yaml:"color"`
}

// Breakdown groups rows like aggregation-mode charts and adds the row count,
// the share of the total and a palette color per category.
func Breakdown(rows []table.Row, category, value string) []Slice {
	groups := groupByCategory(rows, category, value)
	total := Total(rows, value)

	slices := make([]Slice, len(groups))
	for i, g := range groups {
		slices[i] = Slice{Name: g.name, Value: g.sum, Count: g.count, Color: Color(i)}
		if total != 0 {
			slices[i].Share = g.sum / total
		}
	}
	return slices
}

// Total sums the coerced values of field across rows.
func Total(rows []table.Row, field string) float64 {
	var sum float64
	for _, row := range rows {
		sum += table.Coerce(row.Get(field))
	}
	return sum
}
