package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceKlarf/internal/ctxlog"
	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/report"
)

var (
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <klarf-file>",
	Short: "Export the linked defect table to an Excel workbook",
	Long: `Write the defect list with each defect's die ordinal and die total to an
.xlsx workbook, plus a sheet with the wafer header. Without -o the workbook
is written next to the report with an .xlsx extension.

Examples:
  klarf export lot42.klarf
  klarf export lot42.klarf -o /tmp/lot42_defects.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"output workbook path")
}

func runExport(cmd *cobra.Command, args []string) error {
	res, err := loadReport(cmd, args[0])
	if err != nil {
		return err
	}

	path := exportOutput
	if path == "" {
		path = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".xlsx"
	}
	if err := report.WriteWorkbook(path, res.Model); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	ctxlog.FromContext(cmd.Context()).Debug("Workbook written.", "path", path, "defects", len(res.Model.Defects))
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d defect(s) to %s\n", len(res.Model.Defects), path)
	return nil
}
