package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/tabula/engine"
	"github.com/spektr-org/tabula/internal/cli/config"
	"github.com/spektr-org/tabula/table"
)

// stdinPath reads the dataset from standard input.
const stdinPath = "-"

// loadTable parses the CSV at path with the configured delimiter.
func loadTable(cmd *cobra.Command, path string) (*table.Table, error) {
	cfg := config.FromContext(cmd.Context())

	var r io.Reader
	if path == stdinPath {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open dataset: %w", err)
		}
		defer f.Close()
		r = f
	}

	t, err := table.ParseCSV(r, table.WithDelimiter(cfg.DelimiterRune()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	config.GetLogger(cmd.Context()).Debug("dataset loaded",
		"path", path,
		"message", engine.LoadMessage(len(t.Rows), len(t.Headers)))
	return t, nil
}

// sessionOptions are the flags shared by every command that explores a
// dataset.
type sessionOptions struct {
	where []string
	view  string
}

func (o *sessionOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.where, "where", "w", nil,
		"Filter rows: col=a,b | col>=n | col<=n | col=lo..hi (repeatable)")
	cmd.Flags().StringVar(&o.view, "view", "", "Apply a saved view file (overrides config)")
}

// loadSession opens path as a session. The saved view (flag or config) is
// applied first and --where filters are layered on top of it.
func loadSession(cmd *cobra.Command, path string, opts *sessionOptions) (*engine.Session, error) {
	cfg := config.FromContext(cmd.Context())
	log := config.GetLogger(cmd.Context())

	t, err := loadTable(cmd, path)
	if err != nil {
		return nil, err
	}

	s := engine.NewSession(t,
		engine.WithLogger(log),
		engine.WithPreviewRows(cfg.PreviewRows),
		engine.WithChartType(cfg.ChartType()),
	)

	viewPath := cfg.View
	if opts != nil && opts.view != "" {
		viewPath = opts.view
	}
	if viewPath != "" {
		v, err := engine.LoadViewFile(viewPath)
		if err != nil {
			return nil, err
		}
		if err := s.ApplyView(v); err != nil {
			return nil, fmt.Errorf("%s: %w", viewPath, err)
		}
		log.Debug("view applied", "path", viewPath, "filters", len(v.Filters))
	}

	if opts == nil || len(opts.where) == 0 {
		return s, nil
	}
	filters, err := engine.ParseWhere(opts.where, s.Catalog())
	if err != nil {
		return nil, err
	}
	for _, column := range filters.Columns() {
		if err := s.SetFilter(column, filters[column]); err != nil {
			return nil, err
		}
	}
	return s, nil
}
