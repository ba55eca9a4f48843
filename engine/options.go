package engine

import "log/slog"

// ============================================================================
// ENGINE OPTIONS — Functional options for NewSession()
// ============================================================================

// DefaultPreviewRows is the number of rows a preview shows unless
// configured otherwise.
const DefaultPreviewRows = 20

// Option configures session behavior via functional options pattern.
type Option func(*config)

type config struct {
	Logger      *slog.Logger
	PreviewRows int
	ChartType   ChartType
}

// WithLogger routes pipeline logging to l. Sessions log at Debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithPreviewRows sets how many rows Snapshot previews. n <= 0 previews
// every row.
func WithPreviewRows(n int) Option {
	return func(c *config) {
		c.PreviewRows = n
	}
}

// WithChartType sets the chart a new session starts with.
func WithChartType(t ChartType) Option {
	return func(c *config) {
		c.ChartType = t
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:      slog.New(slog.DiscardHandler),
		PreviewRows: DefaultPreviewRows,
		ChartType:   ChartBar,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
