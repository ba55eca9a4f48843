// Package config loads tabula CLI configuration from defaults, a YAML file,
// TABULA_* environment variables and command-line flags.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/spektr-org/tabula/engine"
)

// Default configuration values.
const (
	DefaultOutput    = "table"
	DefaultDelimiter = ","
	DefaultChart     = string(engine.ChartBar)
	EnvPrefix        = "TABULA_"
)

// Outputs lists the accepted output formats.
var Outputs = []string{"table", "markdown", "json", "yaml", "csv"}

// configFileNames are searched in the working directory when no --config is
// given.
var configFileNames = []string{"tabula.yaml", "tabula.yml", ".tabula.yaml"}

// Config holds all CLI configuration options.
type Config struct {
	Output      string `koanf:"output"`
	Verbose     bool   `koanf:"verbose"`
	PreviewRows int    `koanf:"preview_rows"`
	Delimiter   string `koanf:"delimiter"`
	Chart       string `koanf:"chart"`
	View        string `koanf:"view"`

	// FileUsed is the config file that was loaded, if any.
	FileUsed string `koanf:"-"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Output:      DefaultOutput,
		PreviewRows: engine.DefaultPreviewRows,
		Delimiter:   DefaultDelimiter,
		Chart:       DefaultChart,
	}
}

// Load builds the configuration. Precedence (highest to lowest):
// flags > env vars > config file > defaults. Only flags the user changed
// take part.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	def := Default()
	if err := k.Load(confmap.Provider(map[string]any{
		"output":       def.Output,
		"verbose":      def.Verbose,
		"preview_rows": def.PreviewRows,
		"delimiter":    def.Delimiter,
		"chart":        def.Chart,
		"view":         def.View,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: TABULA_PREVIEW_ROWS -> preview_rows
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the explicit path, or the first default config
// file present in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Validate checks option values that the loader cannot type-check.
func (c *Config) Validate() error {
	if !slices.Contains(Outputs, c.Output) {
		return fmt.Errorf("invalid output %q: want one of %s", c.Output, strings.Join(Outputs, ", "))
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("invalid delimiter %q: must be a single character", c.Delimiter)
	}
	if _, err := engine.ParseChartType(c.Chart); err != nil {
		return fmt.Errorf("invalid chart: %w", err)
	}
	return nil
}

// DelimiterRune returns the configured CSV delimiter.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// ChartType returns the configured default chart type.
func (c *Config) ChartType() engine.ChartType {
	t, err := engine.ParseChartType(c.Chart)
	if err != nil {
		return engine.ChartBar
	}
	return t
}

// ============================================================================
// CONTEXT
// ============================================================================

// configKey is used to store config in context.
type configKey struct{}

// loggerKey is used to store logger in context.
type loggerKey struct{}

// WithConfig returns a context carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from the command context, or the
// defaults when none was stored.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Default()
}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// NewLogger returns the CLI logger: warnings and errors only, or debug
// output when verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
