package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/tabula/engine"
	"github.com/spektr-org/tabula/schema"
	"github.com/spektr-org/tabula/table"
)

// ============================================================================
// RENDERING — table | markdown | csv via go-pretty, json | yaml encoders
// ============================================================================

const (
	outputTable    = "table"
	outputMarkdown = "markdown"
	outputJSON     = "json"
	outputYAML     = "yaml"
	outputCSV      = "csv"
)

// encode writes v as JSON or YAML. It reports false for the other formats.
func encode(w io.Writer, v any, format string) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// writeOutput runs write against the file at path, or against stdout when
// path is empty. A failed close fails the command like a failed write.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer closeOutput(f, path, &err)
	return write(f)
}

func closeOutput(c io.Closer, path string, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close %s: %w", path, cerr)
	}
}

// grid is a header plus string cells, rendered by go-pretty.
type grid struct {
	header []string
	rows   [][]string
	right  map[int]bool // zero-based columns aligned right
}

func (g grid) render(w io.Writer, format string) error {
	t := prettytable.NewWriter()
	t.SetOutputMirror(w)
	style := prettytable.StyleLight
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)

	header := make(prettytable.Row, len(g.header))
	for i, h := range g.header {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, cells := range g.rows {
		row := make(prettytable.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}

	var configs []prettytable.ColumnConfig
	for i := range g.header {
		if g.right[i] {
			configs = append(configs, prettytable.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.SetColumnConfigs(configs)

	switch format {
	case outputMarkdown:
		t.RenderMarkdown()
	case outputCSV:
		t.RenderCSV()
	default:
		t.Render()
	}
	return nil
}

// previewGrid lays out a preview with number columns aligned right.
func previewGrid(p *engine.Preview) grid {
	g := grid{rows: p.Rows, right: map[int]bool{}}
	for i, col := range p.Columns {
		g.header = append(g.header, col.Name)
		if col.Align == "right" {
			g.right[i] = true
		}
	}
	return g
}

// rowsGrid lays out rows under headers with their raw cell strings.
func rowsGrid(headers []string, rows []table.Row) grid {
	g := grid{header: headers, rows: make([][]string, len(rows))}
	for i, row := range rows {
		cells := make([]string, len(headers))
		for j, h := range headers {
			cells[j] = row.Get(h).String()
		}
		g.rows[i] = cells
	}
	return g
}

// catalogGrid lists each column with its kind and observed range or
// sample values.
func catalogGrid(catalog schema.Catalog) grid {
	g := grid{header: []string{"Column", "Type", "Details"}}
	for _, col := range catalog {
		g.rows = append(g.rows, []string{col.Name, string(col.Kind), columnDetails(col)})
	}
	return g
}

// maxSampleValues bounds the values listed per string column.
const maxSampleValues = 5

func columnDetails(col schema.ColumnType) string {
	switch col.Kind {
	case schema.KindNumber:
		if col.Min == nil || col.Max == nil {
			return ""
		}
		return schema.FormatValue(table.Number(*col.Min), col.Kind) + " .. " +
			schema.FormatValue(table.Number(*col.Max), col.Kind)
	case schema.KindString:
		n := len(col.UniqueValues)
		if n == 0 {
			return ""
		}
		shown := make([]string, 0, maxSampleValues)
		for _, v := range col.UniqueValues[:min(n, maxSampleValues)] {
			shown = append(shown, v.String())
		}
		out := strings.Join(shown, ", ")
		if n > maxSampleValues {
			out += message.NewPrinter(language.English).Sprintf(" (+%d more)", n-maxSampleValues)
		}
		return out
	}
	return ""
}

// breakdownGrid lays out pie slices with their share of the total.
func breakdownGrid(category, value string, slices []engine.Slice) grid {
	p := message.NewPrinter(language.English)
	g := grid{
		header: []string{category, value, "Rows", "Share", "Color"},
		right:  map[int]bool{1: true, 2: true, 3: true},
	}
	for _, s := range slices {
		g.rows = append(g.rows, []string{
			s.Name,
			schema.FormatValue(table.Number(s.Value), schema.KindNumber),
			p.Sprintf("%d", s.Count),
			p.Sprintf("%.1f%%", s.Share*100),
			s.Color,
		})
	}
	return g
}

// recordHeaders returns the keys of rows in first-occurrence order.
func recordHeaders(rows []table.Row) []string {
	seen := map[string]bool{}
	var headers []string
	for _, row := range rows {
		for _, k := range row.Keys() {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	return headers
}

// writeRows renders rows in any output format. CSV output keeps raw cell
// text and goes through the dataset writer.
func writeRows(w io.Writer, headers []string, rows []table.Row, format string) error {
	if ok, err := encode(w, rows, format); ok {
		return err
	}
	if format == outputCSV {
		return table.WriteCSV(w, headers, rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}
	return rowsGrid(headers, rows).render(w, format)
}
