package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceKlarf/internal/config"
	"github.com/OpenTraceLab/OpenTraceKlarf/internal/ctxlog"
	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// cfg is resolved in PersistentPreRunE before any command runs.
	cfg                = config.Default()
	resolvedConfigPath string
)

var rootCmd = &cobra.Command{
	Use:   "klarf",
	Short: "Wafer inspection report (KLARF) parser and wafer map viewer",
	Long: `klarf parses KLARF wafer inspection reports, links every defect to its die,
checks the report for missing mandatory fields and lays the die grid out for
display.

Examples:
  klarf parse lot42.klarf                  # Summary, warnings and issues
  klarf info --json lot42.klarf            # Wafer header as JSON
  klarf defects --die 1,0 lot42.klarf      # Defects of one die
  klarf scan /data/inspection              # List report files in a tree
  klarf export lot42.klarf -o lot42.xlsx   # Defect table as a workbook
  klarf view lot42.klarf                   # Interactive wafer map`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
// Execute runs the command tree and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/opentraceklarf/klarf.hcl)")
}

// setup loads the config file and puts the logger into the command context.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to locate config: %w", err)
		}
		path = p
	}

	loaded, err := config.Load(cmd.Context(), path)
	if err != nil {
		return err
	}
	cfg = loaded
	resolvedConfigPath = path

	level := cfg.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
	return nil
}

// loadReport parses the report at path with the command's logger.
func loadReport(cmd *cobra.Command, path string) (*klarf.Result, error) {
	ctx := cmd.Context()
	parser := klarf.NewParser(klarf.WithLogger(ctxlog.FromContext(ctx)))
	res, err := parser.ParseFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return res, nil
}
