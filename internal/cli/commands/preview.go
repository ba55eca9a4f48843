package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spektr-org/tabula/engine"
	"github.com/spektr-org/tabula/internal/cli/config"
)

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	var opts sessionOptions

	cmd := &cobra.Command{
		Use:   "preview <file.csv>",
		Short: "Show the first rows with display formatting",
		Long: `Show the first rows of a dataset after filtering, with numbers and dates
formatted for display and a one-line summary of what the filters keep.

JSON and YAML output carry the full snapshot: column types, filters,
chart configuration, plot records and preview.`,
		Example: `  tabula preview sales.csv
  tabula preview sales.csv --where region=EMEA,APAC --preview-rows 50
  tabula preview sales.csv --view q1.yaml -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, args[0], &opts)
			if err != nil {
				return err
			}
			return renderSnapshot(cmd.OutOrStdout(), s.Snapshot(), config.FromContext(cmd.Context()).Output)
		},
	}
	opts.bind(cmd)
	return cmd
}

// renderSnapshot writes the preview table followed by the summary, or the
// whole result for structured formats.
func renderSnapshot(w io.Writer, res *engine.Result, format string) error {
	if ok, err := encode(w, res, format); ok {
		return err
	}
	if err := previewGrid(res.Preview).render(w, format); err != nil {
		return err
	}
	if format == outputCSV {
		return nil
	}
	if res.Preview.Note != "" {
		_, _ = fmt.Fprintln(w, res.Preview.Note)
	}
	_, err := fmt.Fprintln(w, res.Summary.Text)
	return err
}
