package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/tabula/schema"
	"github.com/spektr-org/tabula/table"
)

// ============================================================================
// SAVED VIEWS — Filter state + chart config persisted as YAML
// ============================================================================
// A view file stores the loose shapes interactive state works with:
//
//   filters:
//     city:   {type: text, values: [NYC, LA]}
//     age:    {type: number, min: 28}
//     joined: {type: date, date_range: ["2024-01-01", ""]}
//   chart:
//     type: bar
//     xField: city
//     yFields: [age, score]
//
// Resolve converts them into tagged FilterSpecs and a ChartConfig. Filter
// types this package does not know become UnknownFilter and pass.
// ============================================================================

// View is a saved exploration state.
type View struct {
	Filters map[string]FilterDoc `yaml:"filters,omitempty" json:"filters,omitempty"`
	Chart   *ChartFields         `yaml:"chart,omitempty" json:"chart,omitempty"`
}

// FilterDoc is the serializable form of a FilterSpec. Only the fields of
// its Type are meaningful.
type FilterDoc struct {
	Type   string   `yaml:"type" json:"type"`
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`
	Min    *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max    *float64 `yaml:"max,omitempty" json:"max,omitempty"`

	// DateRange is [start, end]; an empty or missing element is open.
	DateRange []string `yaml:"date_range,omitempty" json:"dateRange,omitempty"`
}

// Spec converts d to its tagged variant. "string" is accepted as an alias
// of "text".
func (d FilterDoc) Spec() (FilterSpec, error) {
	switch d.Type {
	case "":
		return nil, errors.New("filter has no type")
	case string(FilterText), "string":
		var values []table.Value
		for _, v := range d.Values {
			values = append(values, table.Text(v))
		}
		return TextFilter{Values: values}, nil
	case string(FilterNumber):
		return NumberFilter{Min: d.Min, Max: d.Max}, nil
	case string(FilterDate):
		if len(d.DateRange) > 2 {
			return nil, fmt.Errorf("date_range has %d elements, want at most 2", len(d.DateRange))
		}
		var bounds [2]*time.Time
		for i, s := range d.DateRange {
			if s == "" {
				continue
			}
			t, ok := schema.ParseDate(s)
			if !ok {
				return nil, fmt.Errorf("date_range: %q is not a date", s)
			}
			bounds[i] = &t
		}
		return DateFilter{Start: bounds[0], End: bounds[1]}, nil
	default:
		return UnknownFilter{Type: d.Type}, nil
	}
}

// FilterDocOf converts a tagged filter back to its serializable form.
func FilterDocOf(spec FilterSpec) FilterDoc {
	switch f := spec.(type) {
	case TextFilter:
		doc := FilterDoc{Type: string(FilterText)}
		for _, v := range f.Values {
			doc.Values = append(doc.Values, v.String())
		}
		return doc
	case NumberFilter:
		return FilterDoc{Type: string(FilterNumber), Min: f.Min, Max: f.Max}
	case DateFilter:
		doc := FilterDoc{Type: string(FilterDate)}
		if f.Start != nil || f.End != nil {
			doc.DateRange = []string{formatBound(f.Start), formatBound(f.End)}
		}
		return doc
	case UnknownFilter:
		return FilterDoc{Type: f.Type}
	default:
		return FilterDoc{Type: string(spec.Kind())}
	}
}

// formatBound writes midnight UTC bounds as plain dates and anything else
// as RFC 3339, so a reloaded bound is the same instant.
func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	if t.Location() == time.UTC && t.Equal(t.Truncate(24*time.Hour)) {
		return t.Format(schema.DisplayDateLayout)
	}
	return t.Format(time.RFC3339Nano)
}

// ViewOf captures filters and chart as a View. chart may be nil.
func ViewOf(filters FilterState, chart ChartConfig) *View {
	v := &View{}
	if len(filters) > 0 {
		v.Filters = make(map[string]FilterDoc, len(filters))
		for column, spec := range filters {
			v.Filters[column] = FilterDocOf(spec)
		}
	}
	if chart != nil {
		fields := chart.Fields()
		v.Chart = &fields
	}
	return v
}

// Resolve converts the view into a FilterState and ChartConfig. The chart
// is nil when the view has none.
func (v *View) Resolve() (FilterState, ChartConfig, error) {
	filters := make(FilterState, len(v.Filters))
	for column, doc := range v.Filters {
		spec, err := doc.Spec()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: filter %q: %v", ErrInvalidView, column, err)
		}
		filters[column] = spec
	}

	if v.Chart == nil {
		return filters, nil, nil
	}
	chart, err := v.Chart.Config()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: chart: %w", ErrInvalidView, err)
	}
	return filters, chart, nil
}

// LoadView decodes a YAML view. Unknown keys are rejected.
func LoadView(r io.Reader) (*View, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var v View
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return &View{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidView, err)
	}
	return &v, nil
}

// LoadViewFile reads a YAML view from path.
func LoadViewFile(path string) (*View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening view: %w", err)
	}
	defer f.Close()

	v, err := LoadView(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// SaveView encodes v as YAML.
func SaveView(w io.Writer, v *View) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding view: %w", err)
	}
	return enc.Close()
}
