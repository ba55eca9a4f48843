package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/spektr-org/tabula/engine"
	"github.com/spektr-org/tabula/internal/cli/config"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		opts    sessionOptions
		flags   chartFlags
		outPath string
		records bool
	)

	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Write filtered rows or plot records as CSV",
		Long: `Write the rows that pass the filters as CSV, in the dataset's column
order. With --records, write the chart's plot records instead, ready for a
spreadsheet.`,
		Example: `  tabula export sales.csv --where region=EMEA --out emea.csv
  tabula export sales.csv --records --type pie --category region --value revenue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, args[0], &opts)
			if err != nil {
				return err
			}

			err = writeOutput(cmd.OutOrStdout(), outPath, func(w io.Writer) error {
				return exportCSV(cmd, s, w, records, flags)
			})
			if err != nil {
				return err
			}
			if outPath != "" {
				config.GetLogger(cmd.Context()).Info("export written", "path", outPath)
			}
			return nil
		},
	}
	opts.bind(cmd)
	bindChartFlags(cmd, &flags)
	cmd.Flags().StringVar(&outPath, "out", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&records, "records", false, "Export chart plot records instead of rows")
	return cmd
}

func exportCSV(cmd *cobra.Command, s *engine.Session, w io.Writer, records bool, flags chartFlags) error {
	rows := s.FilteredRows()
	if !records {
		return writeRows(w, s.Headers(), rows, outputCSV)
	}

	if err := applyChartFlags(cmd, s, flags); err != nil {
		return err
	}
	out := engine.Prepare(rows, s.Chart())
	headers := recordHeaders(out)
	if len(headers) == 0 {
		headers = s.Headers()
	}
	return writeRows(w, headers, out, outputCSV)
}
