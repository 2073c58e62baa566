package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/OpenTraceKlarf/internal/ctxlog"
	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

var (
	scanExtensions []string
	scanSummary    bool
	scanJobs       int
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Find inspection reports in a directory tree",
	Long: `Recursively list inspection report files. Directories that cannot be read
are skipped. With --summary every file is parsed (in parallel) and its lot,
wafer and counts are shown.

Examples:
  klarf scan /data/inspection
  klarf scan --ext .klarf --ext .kla /data
  klarf scan --summary --jobs 4 /data/inspection`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSliceVarP(&scanExtensions, "ext", "e", nil,
		"file extensions to match (default from config)")
	scanCmd.Flags().BoolVarP(&scanSummary, "summary", "s", false,
		"parse each file and show a one-line summary")
	scanCmd.Flags().IntVarP(&scanJobs, "jobs", "j", runtime.NumCPU(),
		"files parsed concurrently with --summary")
}

// scanRow is the summary of one parsed file.
type scanRow struct {
	lot, wafer string
	dies       int
	defects    int
	warnings   int
	err        error
}

func runScan(cmd *cobra.Command, args []string) error {
	exts := scanExtensions
	if len(exts) == 0 {
		exts = cfg.Extensions
	}
	files, err := klarf.FindFiles(args[0], exts)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", args[0], err)
	}
	out := cmd.OutOrStdout()

	if !scanSummary {
		for _, f := range files {
			fmt.Fprintf(out, "%-40s %s %10d\n", f.Path, f.ModTime.Format("2006-01-02 15:04"), f.Size)
		}
		fmt.Fprintf(out, "\n%d file(s)\n", len(files))
		return nil
	}

	rows, err := summarize(cmd, files)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-40s %-12s %-8s %6s %8s %s\n", "File", "Lot", "Wafer", "Dies", "Defects", "Status")
	failed := 0
	for i, f := range files {
		r := rows[i]
		status := "ok"
		switch {
		case r.err != nil:
			status = "error: " + r.err.Error()
			failed++
		case r.warnings > 0:
			status = fmt.Sprintf("%d missing", r.warnings)
		}
		fmt.Fprintf(out, "%-40s %-12s %-8s %6d %8d %s\n", f.Name, r.lot, r.wafer, r.dies, r.defects, status)
	}
	fmt.Fprintf(out, "\n%d file(s), %d unreadable\n", len(files), failed)
	return nil
}

// summarize parses files concurrently. A file that cannot be read is
// reported on its row; only cancellation stops the scan.
func summarize(cmd *cobra.Command, files []klarf.FileEntry) ([]scanRow, error) {
	rows := make([]scanRow, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(1, scanJobs))

	parser := klarf.NewParser(klarf.WithLogger(ctxlog.FromContext(ctx)))
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := parser.ParseFile(ctx, f.Path)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				rows[i] = scanRow{err: err}
				return nil
			}
			m := res.Model
			rows[i] = scanRow{
				lot:      m.Wafer.LotID,
				wafer:    m.Wafer.WaferID,
				dies:     len(m.Dies),
				defects:  len(m.Defects),
				warnings: len(res.Warnings),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}
	return rows, nil
}
