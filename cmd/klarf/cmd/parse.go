package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

var (
	showIssues bool
	strict     bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <klarf-file>",
	Short: "Parse a report and summarise it",
	Long: `Parse a KLARF report, link defects to dies and print a summary with the
mandatory fields the report is missing and the lines that could not be read.

Examples:
  klarf parse lot42.klarf
  klarf parse --issues lot42.001
  klarf parse --strict lot42.klarf    # exit non-zero on warnings`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&showIssues, "issues", "i", false,
		"list every skipped field and row")
	parseCmd.Flags().BoolVar(&strict, "strict", false,
		"fail when mandatory fields are missing")
}

func runParse(cmd *cobra.Command, args []string) error {
	res, err := loadReport(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	m := res.Model
	w := m.Wafer

	fmt.Fprintf(out, "╔════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(out, "║ Inspection Report                                              ║\n")
	fmt.Fprintf(out, "╠════════════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(out, "║ Lot: %-20s Wafer: %-29s ║\n", w.LotID, w.WaferID)
	fmt.Fprintf(out, "╚════════════════════════════════════════════════════════════════╝\n\n")

	fmt.Fprintf(out, "File:           %s\n", m.Path)
	if w.DeviceID != "" {
		fmt.Fprintf(out, "Device:         %s\n", w.DeviceID)
	}
	if w.StepID != "" {
		fmt.Fprintf(out, "Step:           %s\n", w.StepID)
	}
	if !w.FileTimestamp.IsZero() {
		fmt.Fprintf(out, "Timestamp:      %s\n", w.FileTimestamp.Format(klarf.TimestampLayout))
	}
	fmt.Fprintf(out, "Die pitch:      %g x %g\n", w.DiePitch.Width, w.DiePitch.Height)
	fmt.Fprintf(out, "Dies:           %d", len(m.Dies))
	if w.TotalDies != 0 && w.TotalDies != len(m.Dies) {
		fmt.Fprintf(out, " (declared %d)", w.TotalDies)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Defective dies: %d\n", m.DefectiveDies())
	fmt.Fprintf(out, "Defects:        %d\n", len(m.Defects))
	if n := unlinked(m); n > 0 {
		fmt.Fprintf(out, "Unlinked:       %d (no matching die)\n", n)
	}
	fmt.Fprintln(out)

	printWarnings(out, res.Warnings)

	if len(res.Issues) > 0 {
		fmt.Fprintf(out, "Issues: %d line(s) skipped\n", len(res.Issues))
		if showIssues || verbose {
			for _, is := range res.Issues {
				fmt.Fprintf(out, "  %s\n", is.Error())
			}
		}
	}

	if strict && len(res.Warnings) > 0 {
		return fmt.Errorf("report incomplete: %d mandatory field(s) missing", len(res.Warnings))
	}
	return nil
}

func printWarnings(out io.Writer, warnings []string) {
	if len(warnings) == 0 {
		fmt.Fprintf(out, "✓ All mandatory fields present\n")
		return
	}
	fmt.Fprintf(out, "⚠ Missing: ")
	for i, w := range warnings {
		if i > 0 {
			fmt.Fprint(out, ", ")
		}
		fmt.Fprint(out, w)
	}
	fmt.Fprintln(out)
}

func unlinked(m *klarf.Model) int {
	n := 0
	for _, d := range m.Defects {
		if d.TotalInDie == 0 {
			n++
		}
	}
	return n
}
