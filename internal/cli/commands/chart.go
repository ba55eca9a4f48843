package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/tabula/engine"
	"github.com/spektr-org/tabula/internal/cli/config"
	"github.com/spektr-org/tabula/table"
)

// chartOutput is the structured form of the chart command's result.
type chartOutput struct {
	Chart     engine.ChartFields `json:"chart" yaml:"chart"`
	Records   []table.Row        `json:"records" yaml:"records"`
	Breakdown []engine.Slice     `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

type chartFlags struct {
	chartType string
	x         string
	ys        []string
	category  string
	value     string
}

// NewChartCommand creates the chart command.
func NewChartCommand() *cobra.Command {
	var (
		opts  sessionOptions
		flags chartFlags
	)

	cmd := &cobra.Command{
		Use:   "chart <file.csv>",
		Short: "Prepare plot records for a chart",
		Long: `Prepare the records a chart of the filtered rows would plot.

Bar, line and area charts coerce their Y columns to numbers; anything that
is not a number plots as 0. Pie charts sum the value column per category
in order of first appearance.

Fields not given on the command line default to the first column (X or
category) and the first number column (Y or value).`,
		Example: `  tabula chart sales.csv --type pie --category region --value revenue
  tabula chart sales.csv --type line --x month --y revenue --y cost -o csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, args[0], &opts)
			if err != nil {
				return err
			}
			if err := applyChartFlags(cmd, s, flags); err != nil {
				return err
			}
			return renderChart(cmd, s)
		},
	}
	opts.bind(cmd)
	bindChartFlags(cmd, &flags)
	return cmd
}

func bindChartFlags(cmd *cobra.Command, f *chartFlags) {
	cmd.Flags().StringVarP(&f.chartType, "type", "t", "", "Chart type (bar|line|area|pie)")
	cmd.Flags().StringVar(&f.x, "x", "", "X axis column (bar, line, area)")
	cmd.Flags().StringArrayVar(&f.ys, "y", nil, "Series column, repeatable (bar, line, area)")
	cmd.Flags().StringVar(&f.category, "category", "", "Category column (pie)")
	cmd.Flags().StringVar(&f.value, "value", "", "Value column (pie)")

	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(engine.ChartTypes))
		for i, t := range engine.ChartTypes {
			names[i] = string(t)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

// applyChartFlags switches the session to the requested chart type and
// overrides the fields given on the command line. --category with --value
// selects a pie chart when --type is not given.
func applyChartFlags(cmd *cobra.Command, s *engine.Session, f chartFlags) error {
	typeChanged := cmd.Flags().Changed("type")
	if typeChanged {
		t, err := engine.ParseChartType(f.chartType)
		if err != nil {
			return err
		}
		if err := s.SetChartType(t); err != nil {
			return err
		}
	}

	fields := s.Chart().Fields()
	if f.x != "" {
		fields.XField = f.x
	}
	if len(f.ys) > 0 {
		fields.YField = ""
		fields.YFields = f.ys
	}
	if f.category != "" {
		fields.CategoryField = f.category
	}
	if f.value != "" {
		fields.ValueField = f.value
	}

	if f.category != "" && f.value != "" {
		if mode := fields.Mode(); typeChanged && fields.Type != mode {
			return fmt.Errorf("%w: --category and --value make a %s chart, not %s", engine.ErrChartFields, mode, fields.Type)
		}
		fields.Type = fields.Mode()
	}

	columns := append([]string{fields.XField, fields.CategoryField, fields.ValueField}, fields.Series()...)
	for _, column := range columns {
		if column == "" {
			continue
		}
		if _, ok := s.Catalog().Lookup(column); !ok {
			return fmt.Errorf("%w: %q", engine.ErrUnknownColumn, column)
		}
	}
	return s.SetChartFields(fields)
}

func renderChart(cmd *cobra.Command, s *engine.Session) error {
	format := config.FromContext(cmd.Context()).Output
	w := cmd.OutOrStdout()

	filtered := s.FilteredRows()
	chart := s.Chart()
	out := chartOutput{Chart: chart.Fields(), Records: engine.Prepare(filtered, chart)}

	pie, isPie := chart.(engine.PieChart)
	if isPie && pie.Category != "" && pie.Value != "" {
		out.Breakdown = engine.Breakdown(filtered, pie.Category, pie.Value)
	}

	if ok, err := encode(w, out, format); ok {
		return err
	}

	if out.Breakdown != nil && format != outputCSV {
		if len(out.Breakdown) == 0 {
			_, err := fmt.Fprintln(w, "(0 rows)")
			return err
		}
		return breakdownGrid(pie.Category, pie.Value, out.Breakdown).render(w, format)
	}

	headers := recordHeaders(out.Records)
	if fields := out.Chart; !isPie && fields.XField != "" && len(fields.Series()) > 0 {
		headers = append([]string{fields.XField}, fields.Series()...)
	}
	return writeRows(w, headers, out.Records, format)
}
