package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/spektr-org/tabula/schema"
	"github.com/spektr-org/tabula/table"
)

// ============================================================================
// SESSION — Interactive exploration state + pipeline
// ============================================================================
// Entry point: NewSession(table, opts...)
//
// Pipeline (Snapshot):
//   1. Apply the filter state → filtered rows (fresh slice)
//   2. Prepare plot records for the chart config
//   3. Build summary + preview
//   4. Return Result
//
// The dataset and its catalog are fixed for the life of a session. Edits
// replace the filter state or chart config; derived data is recomputed on
// every Snapshot and never patched in place.
// ============================================================================

// Session holds one loaded dataset and the user's filters and chart.
// A Session is not safe for concurrent use; callers serialize edits.
type Session struct {
	headers []string
	rows    []table.Row
	catalog schema.Catalog

	filters FilterState
	chart   ChartConfig

	cfg *config
	log *slog.Logger
}

// NewSession infers the catalog for t and starts with no filters and the
// default chart for the configured chart type (bar unless WithChartType).
func NewSession(t *table.Table, opts ...Option) *Session {
	cfg := applyOptions(opts)
	if t == nil {
		t = &table.Table{}
	}

	s := &Session{
		headers: slices.Clone(t.Headers),
		rows:    t.Rows,
		catalog: schema.Infer(t.Rows),
		filters: FilterState{},
		cfg:     cfg,
		log:     cfg.Logger,
	}

	chart, err := DefaultChartConfig(s.catalog, cfg.ChartType)
	if err != nil {
		s.log.Warn("falling back to bar chart", "error", err)
		chart, _ = DefaultChartConfig(s.catalog, ChartBar)
	}
	s.chart = chart

	s.log.Debug("session started",
		"rows", len(s.rows),
		"columns", len(s.headers),
		"numberColumns", len(s.catalog.OfKind(schema.KindNumber)),
		"chart", chart.Type())
	return s
}

// Headers returns the dataset's column names in order.
func (s *Session) Headers() []string { return slices.Clone(s.headers) }

// Rows returns the unfiltered dataset.
func (s *Session) Rows() []table.Row { return s.rows }

// Catalog returns the inferred column types.
func (s *Session) Catalog() schema.Catalog { return s.catalog }

// Filters returns a copy of the current filter state.
func (s *Session) Filters() FilterState { return maps.Clone(s.filters) }

// Chart returns the current chart configuration.
func (s *Session) Chart() ChartConfig { return s.chart }

// ============================================================================
// FILTER EDITS
// ============================================================================

func (s *Session) column(name string) (schema.ColumnType, error) {
	col, ok := s.catalog.Lookup(name)
	if !ok {
		return schema.ColumnType{}, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return col, nil
}

// SetFilter replaces column's filter with spec. A nil spec removes it.
func (s *Session) SetFilter(column string, spec FilterSpec) error {
	if _, err := s.column(column); err != nil {
		return err
	}
	if spec == nil {
		s.RemoveFilter(column)
		return nil
	}
	s.filters = s.filters.With(column, spec)
	s.log.Debug("filter set", "column", column, "kind", spec.Kind())
	return nil
}

// AddFilter gives column its default filter and returns it. A column that
// is already filtered keeps its current filter.
func (s *Session) AddFilter(column string) (FilterSpec, error) {
	col, err := s.column(column)
	if err != nil {
		return nil, err
	}
	if existing, ok := s.filters[column]; ok {
		return existing, nil
	}
	spec := DefaultFilter(col)
	s.filters = s.filters.With(column, spec)
	s.log.Debug("filter added", "column", column, "kind", spec.Kind())
	return spec, nil
}

// ToggleValue adds v to column's text filter, or removes it when already
// present. A column without a filter gets a text filter holding only v.
func (s *Session) ToggleValue(column string, v table.Value) error {
	if _, err := s.column(column); err != nil {
		return err
	}

	current := TextFilter{}
	if spec, ok := s.filters[column]; ok {
		text, isText := spec.(TextFilter)
		if !isText {
			return fmt.Errorf("column %q has a %s filter, not text", column, spec.Kind())
		}
		current = text
	}

	values := slices.Clone(current.Values)
	if i := slices.IndexFunc(values, v.Equal); i >= 0 {
		values = slices.Delete(values, i, i+1)
	} else {
		values = append(values, v)
	}
	s.filters = s.filters.With(column, TextFilter{Values: values})
	return nil
}

// RemoveFilter drops column's filter.
func (s *Session) RemoveFilter(column string) {
	s.filters = s.filters.Without(column)
}

// ClearFilters drops every filter.
func (s *Session) ClearFilters() {
	s.filters = FilterState{}
}

// ============================================================================
// CHART EDITS
// ============================================================================

// SetChart replaces the chart configuration.
func (s *Session) SetChart(cfg ChartConfig) {
	s.chart = cfg
}

// SetChartFields replaces the chart configuration from its loose form.
func (s *Session) SetChartFields(f ChartFields) error {
	cfg, err := f.Config()
	if err != nil {
		return err
	}
	s.chart = cfg
	return nil
}

// SetChartType switches the chart type and resets its fields to the
// defaults for that type.
func (s *Session) SetChartType(t ChartType) error {
	cfg, err := DefaultChartConfig(s.catalog, t)
	if err != nil {
		return err
	}
	s.chart = cfg
	return nil
}

// ============================================================================
// VIEWS
// ============================================================================

// ApplyView replaces the filter state with v's filters, and the chart when
// v has one. Filters naming columns outside the catalog are kept; they are
// evaluated against Null cells and exclude every row.
func (s *Session) ApplyView(v *View) error {
	filters, chart, err := v.Resolve()
	if err != nil {
		return err
	}
	for column := range filters {
		if _, ok := s.catalog.Lookup(column); !ok {
			s.log.Warn("view filters a column the dataset does not have", "column", column)
		}
	}
	s.filters = filters
	if chart != nil {
		s.chart = chart
	}
	return nil
}

// View captures the current filters and chart.
func (s *Session) View() *View {
	return ViewOf(s.filters, s.chart)
}

// ============================================================================
// PIPELINE
// ============================================================================

// FilteredRows applies the current filters to the dataset.
func (s *Session) FilteredRows() []table.Row {
	return ApplyFilters(s.rows, s.filters, s.catalog)
}

// Snapshot recomputes every derived output from the current state.
func (s *Session) Snapshot() *Result {
	filtered := s.FilteredRows()
	records := Prepare(filtered, s.chart)

	s.log.Debug("snapshot",
		"rows", len(s.rows),
		"filtered", len(filtered),
		"records", len(records),
		"filters", len(s.filters))

	docs := make(map[string]FilterDoc, len(s.filters))
	for column, spec := range s.filters {
		docs[column] = FilterDocOf(spec)
	}

	var chart ChartFields
	if s.chart != nil {
		chart = s.chart.Fields()
	}

	return &Result{
		Catalog: s.catalog,
		Filters: docs,
		Chart:   chart,
		Rows:    filtered,
		Records: records,
		Summary: BuildSummary(len(s.rows), len(filtered), len(s.headers), s.filters),
		Preview: BuildPreview(s.headers, filtered, s.catalog, s.cfg.PreviewRows),
	}
}
