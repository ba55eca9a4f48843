// Package cli provides the command-line interface for tabula.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/tabula/internal/cli/commands"
	"github.com/spektr-org/tabula/internal/cli/config"
)

// Version information (set at build time).
var Version = "0.3.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "tabula",
		Short: "Explore CSV data: infer types, filter rows, prepare charts",
		Long: `tabula loads a CSV file, detects whether each column holds numbers,
dates or text, and lets you filter the rows and prepare chart data from
the command line.

Configuration is read from tabula.yaml in the working directory (or
--config), TABULA_* environment variables and flags, in increasing order
of precedence.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if cfg.FileUsed != "" {
				logger.Debug("using config file", "path", cfg.FileUsed)
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./tabula.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|markdown|json|yaml|csv)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Int("preview-rows", 0, "Rows shown by preview and watch (0 for all)")
	rootCmd.PersistentFlags().String("delimiter", "", "CSV field delimiter")
	rootCmd.PersistentFlags().String("chart", "", "Default chart type (bar|line|area|pie)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.Outputs, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewInferCommand())
	rootCmd.AddCommand(commands.NewPreviewCommand())
	rootCmd.AddCommand(commands.NewFilterCommand())
	rootCmd.AddCommand(commands.NewChartCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewViewCommand())

	return rootCmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
