package commands

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/tabula/engine"
	"github.com/spektr-org/tabula/internal/cli/config"
)

// NewFilterCommand creates the filter command.
func NewFilterCommand() *cobra.Command {
	var opts sessionOptions

	cmd := &cobra.Command{
		Use:   "filter <file.csv>",
		Short: "Print every row that passes the filters",
		Long: `Print every row that passes all filters, with raw cell text.

Filters:
  col=a,b        text column: keep rows whose value is one of a, b
  col>=n         number or date column: lower bound (inclusive)
  col<=n         upper bound (inclusive)
  col=lo..hi     both bounds; either side may be empty
  col=n          number or date column: exact value

A row with no value in a filtered column never passes. The summary is
logged to stderr with --verbose.`,
		Example: `  tabula filter people.csv --where 'age>=28' --where city=NYC,LA
  tabula filter people.csv --where 'joined=2024-01-01..' -o csv > recent.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, args[0], &opts)
			if err != nil {
				return err
			}

			rows := s.FilteredRows()
			summary := engine.BuildSummary(len(s.Rows()), len(rows), len(s.Headers()), s.Filters())
			config.GetLogger(cmd.Context()).Info(summary.Text)

			return writeRows(cmd.OutOrStdout(), s.Headers(), rows, config.FromContext(cmd.Context()).Output)
		},
	}
	opts.bind(cmd)
	return cmd
}
