package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	onlyDefective bool
)

var diesCmd = &cobra.Command{
	Use:   "dies <klarf-file>",
	Short: "List the die grid with per-die defect counts",
	Long: `List every die of the sample test plan in file order with its grid
coordinate and the number of defects linked to it.

Examples:
  klarf dies lot42.klarf
  klarf dies --defective lot42.klarf`,
	Args: cobra.ExactArgs(1),
	RunE: runDies,
}

func init() {
	rootCmd.AddCommand(diesCmd)

	diesCmd.Flags().BoolVarP(&onlyDefective, "defective", "d", false,
		"only list dies with defects")
}

func runDies(cmd *cobra.Command, args []string) error {
	res, err := loadReport(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	m := res.Model

	fmt.Fprintf(out, "%6s %6s %6s %8s\n", "ID", "X", "Y", "Defects")
	fmt.Fprintln(out, "─────────────────────────────")
	shown := 0
	for _, d := range m.Dies {
		if onlyDefective && !d.HasDefect {
			continue
		}
		fmt.Fprintf(out, "%6d %6d %6d %8d\n", d.ID, d.XIndex, d.YIndex, d.DefectCount)
		shown++
	}
	fmt.Fprintf(out, "\n%d of %d dies, %d defective\n", shown, len(m.Dies), m.DefectiveDies())
	return nil
}
