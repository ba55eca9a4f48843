package engine

import (
	"fmt"

	"github.com/spektr-org/tabula/schema"
	"github.com/spektr-org/tabula/table"
)

// ============================================================================
// CHART BUILDER — Plot-ready records from filtered rows + chart config
// ============================================================================
// Two modes:
//   Aggregation (pie): sum Value per distinct Category, first-seen order
//   Series (bar/line/area): copy each row with every Y field coerced
//
// Coercion is uniform: parse the string form, NaN becomes 0. A config
// missing the fields for its mode passes rows through unchanged.
// ============================================================================

// ChartType names a chart.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
	ChartArea ChartType = "area"
)

// ChartTypes lists every supported chart type in display order.
var ChartTypes = []ChartType{ChartBar, ChartLine, ChartPie, ChartArea}

// ParseChartType resolves a chart type name. The empty string is bar.
func ParseChartType(s string) (ChartType, error) {
	switch t := ChartType(s); t {
	case "":
		return ChartBar, nil
	case ChartBar, ChartLine, ChartPie, ChartArea:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChartType, s)
	}
}

// Default color palette for chart series and pie slices.
var defaultColors = []string{
	"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#8884D8",
	"#82CA9D", "#FFC658", "#FF7C7C", "#8DD1E1", "#D084D0",
}

// Color returns the palette color for the i-th series or slice.
func Color(i int) string {
	return defaultColors[i%len(defaultColors)]
}

// ChartConfig is a closed set of chart configurations: SeriesChart and
// PieChart. Each variant only holds the fields its chart type uses.
type ChartConfig interface {
	Type() ChartType
	Fields() ChartFields
	prepare(rows []table.Row) []table.Row
}

// SeriesChart plots one or more numeric Y fields against X. Kind is bar,
// line or area. Ys are rendered in order.
type SeriesChart struct {
	Kind ChartType
	X    string
	Ys   []string
}

func (c SeriesChart) Type() ChartType { return c.Kind }

// Fields converts c back to the loose field shape. A single series is
// written as YField, several as YFields.
func (c SeriesChart) Fields() ChartFields {
	f := ChartFields{Type: c.Kind, XField: c.X}
	switch len(c.Ys) {
	case 0:
	case 1:
		f.YField = c.Ys[0]
	default:
		f.YFields = append([]string(nil), c.Ys...)
	}
	return f
}

func (c SeriesChart) prepare(rows []table.Row) []table.Row {
	if c.X == "" || len(c.Ys) == 0 {
		return rows
	}
	return coerceSeries(rows, c.Ys)
}

// PieChart sums Value per distinct Category.
type PieChart struct {
	Category string
	Value    string
}

func (PieChart) Type() ChartType { return ChartPie }

func (c PieChart) Fields() ChartFields {
	return ChartFields{Type: ChartPie, CategoryField: c.Category, ValueField: c.Value}
}

func (c PieChart) prepare(rows []table.Row) []table.Row {
	if c.Category == "" || c.Value == "" {
		return rows
	}
	return sumByCategory(rows, c.Category, c.Value)
}

// ChartFields is the loose chart configuration kept by interactive state
// and view files: every field is present and some may be empty.
type ChartFields struct {
	Type          ChartType `json:"type" yaml:"type"`
	XField        string    `json:"xField,omitempty" yaml:"xField,omitempty"`
	YField        string    `json:"yField,omitempty" yaml:"yField,omitempty"`
	YFields       []string  `json:"yFields,omitempty" yaml:"yFields,omitempty"`
	CategoryField string    `json:"categoryField,omitempty" yaml:"categoryField,omitempty"`
	ValueField    string    `json:"valueField,omitempty" yaml:"valueField,omitempty"`
}

// Series returns the Y fields to plot: YFields when non-empty, else YField.
func (f ChartFields) Series() []string {
	var ys []string
	for _, y := range f.YFields {
		if y != "" {
			ys = append(ys, y)
		}
	}
	if len(ys) > 0 {
		return ys
	}
	if f.YField != "" {
		return []string{f.YField}
	}
	return nil
}

// Mode returns the chart type the populated fields select. Category and
// Value together select pie over any Type, as in PrepareFields.
func (f ChartFields) Mode() ChartType {
	if f.CategoryField != "" && f.ValueField != "" {
		return ChartPie
	}
	return f.Type
}

// Config converts f to its tagged variant, keeping only the fields its
// type uses. An empty Type is bar.
func (f ChartFields) Config() (ChartConfig, error) {
	t, err := ParseChartType(string(f.Type))
	if err != nil {
		return nil, err
	}
	if t == ChartPie {
		return PieChart{Category: f.CategoryField, Value: f.ValueField}, nil
	}
	return SeriesChart{Kind: t, X: f.XField, Ys: f.Series()}, nil
}

// Prepare turns filtered rows into plot records for cfg. Empty input yields
// an empty result. A nil cfg, or one missing the fields its mode needs,
// returns rows unchanged.
func Prepare(rows []table.Row, cfg ChartConfig) []table.Row {
	if len(rows) == 0 {
		return []table.Row{}
	}
	if cfg == nil {
		return rows
	}
	return cfg.prepare(rows)
}

// PrepareFields is Prepare for the loose field shape. The mode is chosen by
// which fields are set, regardless of Type: Category and Value select
// aggregation and win over X with Y fields, which select series mode.
func PrepareFields(rows []table.Row, f ChartFields) []table.Row {
	if len(rows) == 0 {
		return []table.Row{}
	}
	if f.CategoryField != "" && f.ValueField != "" {
		return sumByCategory(rows, f.CategoryField, f.ValueField)
	}
	if ys := f.Series(); f.XField != "" && len(ys) > 0 {
		return coerceSeries(rows, ys)
	}
	return rows
}

// DefaultChartFields returns the starting configuration for chart type t:
// the first column as the category or X axis and the first number column
// as the value or single series. Fields the catalog cannot supply stay
// empty.
func DefaultChartFields(catalog schema.Catalog, t ChartType) ChartFields {
	var first string
	if len(catalog) > 0 {
		first = catalog[0].Name
	}
	firstNumber := catalog.FirstOfKind(schema.KindNumber)

	if t == ChartPie {
		return ChartFields{Type: t, CategoryField: first, ValueField: firstNumber}
	}
	return ChartFields{Type: t, XField: first, YField: firstNumber}
}

// DefaultChartConfig is DefaultChartFields in tagged form.
func DefaultChartConfig(catalog schema.Catalog, t ChartType) (ChartConfig, error) {
	return DefaultChartFields(catalog, t).Config()
}

// coerceSeries copies every row with each Y field replaced by its coerced
// number. Other fields pass through and row order is kept.
func coerceSeries(rows []table.Row, ys []string) []table.Row {
	out := make([]table.Row, len(rows))
	fields := make([]table.Field, len(ys))
	for i, row := range rows {
		for j, y := range ys {
			fields[j] = table.Field{Key: y, Value: table.Number(table.Coerce(row.Get(y)))}
		}
		out[i] = row.With(fields...)
	}
	return out
}
