package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spektr-org/tabula/engine"
	"github.com/spektr-org/tabula/internal/cli/config"
)

// NewViewCommand creates the view command group.
func NewViewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Save and inspect filter/chart views",
		Long: `A view is a YAML file holding filters and a chart configuration. Apply one
with --view on any command, or set "view" in tabula.yaml.`,
	}
	cmd.AddCommand(newViewSaveCommand())
	cmd.AddCommand(newViewShowCommand())
	return cmd
}

func newViewSaveCommand() *cobra.Command {
	var (
		opts    sessionOptions
		flags   chartFlags
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "save <file.csv>",
		Short: "Write the current filters and chart as a view",
		Example: `  tabula view save sales.csv --where region=EMEA --type pie --out emea.yaml
  tabula preview sales.csv --view emea.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, args[0], &opts)
			if err != nil {
				return err
			}
			if err := applyChartFlags(cmd, s, flags); err != nil {
				return err
			}

			err = writeOutput(cmd.OutOrStdout(), outPath, func(w io.Writer) error {
				return engine.SaveView(w, s.View())
			})
			if err != nil {
				return err
			}
			if outPath != "" {
				config.GetLogger(cmd.Context()).Info("view written", "path", outPath)
			}
			return nil
		},
	}
	opts.bind(cmd)
	bindChartFlags(cmd, &flags)
	cmd.Flags().StringVar(&outPath, "out", "", "Write to this file instead of stdout")
	return cmd
}

func newViewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <view.yaml>",
		Short: "Validate a view and list its filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := engine.LoadViewFile(args[0])
			if err != nil {
				return err
			}
			filters, chart, err := v.Resolve()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			format := config.FromContext(cmd.Context()).Output
			if ok, err := encode(w, v, format); ok {
				return err
			}

			g := grid{header: []string{"Column", "Filter", "Condition"}}
			for _, column := range filters.Columns() {
				spec := filters[column]
				g.rows = append(g.rows, []string{column, string(spec.Kind()), fmt.Sprint(spec)})
			}
			if err := g.render(w, format); err != nil {
				return err
			}
			if chart != nil && format != outputCSV {
				f := chart.Fields()
				_, _ = fmt.Fprintf(w, "chart: %s %s\n", f.Type, chartAxes(f))
			}
			return nil
		},
	}
}

func chartAxes(f engine.ChartFields) string {
	if f.Type == engine.ChartPie {
		return fmt.Sprintf("(category=%s, value=%s)", f.CategoryField, f.ValueField)
	}
	return fmt.Sprintf("(x=%s, y=%v)", f.XField, f.Series())
}
