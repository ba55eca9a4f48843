package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/tabula/internal/cli/config"
	"github.com/spektr-org/tabula/schema"
)

// maxParallelFiles bounds how many datasets infer reads at once.
const maxParallelFiles = 4

// fileCatalog is the inferred catalog of one dataset.
type fileCatalog struct {
	File    string         `json:"file" yaml:"file"`
	Columns schema.Catalog `json:"columns" yaml:"columns"`
}

// NewInferCommand creates the infer command.
func NewInferCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "infer <file.csv>...",
		Short: "Detect column types",
		Long: `Classify every column of one or more CSV files as number, date or string.

Number columns report their observed range; string columns list their
distinct values in order of first occurrence.`,
		Example: `  # Inspect one file
  tabula infer sales.csv

  # Several files at once, as JSON
  tabula infer q1.csv q2.csv -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(cmd, args)
		},
	}
}

func runInfer(cmd *cobra.Command, paths []string) error {
	cfg := config.FromContext(cmd.Context())

	results := make([]fileCatalog, len(paths))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(maxParallelFiles)
	for i, path := range paths {
		g.Go(func() error {
			// Skip files queued behind a failure or a cancelled command.
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := loadTable(cmd, path)
			if err != nil {
				return err
			}
			results[i] = fileCatalog{File: path, Columns: schema.Infer(t.Rows)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(results) == 1 {
		if ok, err := encode(w, results[0].Columns, cfg.Output); ok {
			return err
		}
		return catalogGrid(results[0].Columns).render(w, cfg.Output)
	}

	if ok, err := encode(w, results, cfg.Output); ok {
		return err
	}
	for i, r := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "%s\n", r.File)
		if err := catalogGrid(r.Columns).render(w, cfg.Output); err != nil {
			return err
		}
	}
	return nil
}
