package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

var (
	dieFilter string
)

var defectsCmd = &cobra.Command{
	Use:   "defects <klarf-file>",
	Short: "List defects with their die and position in die",
	Long: `List defects in file order. DIE shows the defect's ordinal within its die
and the die's total (e.g. 2/3); "-" marks a defect whose die is not part of
the sample test plan.

Examples:
  klarf defects lot42.klarf
  klarf defects --die 1,0 lot42.klarf`,
	Args: cobra.ExactArgs(1),
	RunE: runDefects,
}

func init() {
	rootCmd.AddCommand(defectsCmd)

	defectsCmd.Flags().StringVar(&dieFilter, "die", "",
		"only defects of the die at X,Y")
}

func runDefects(cmd *cobra.Command, args []string) error {
	var (
		filter    klarf.Coord
		hasFilter bool
	)
	if dieFilter != "" {
		c, err := parseCoord(dieFilter)
		if err != nil {
			return err
		}
		filter, hasFilter = c, true
	}

	res, err := loadReport(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	m := res.Model

	var indices []int
	if hasFilter {
		nav := klarf.NewNavigator(m)
		die, ok := nav.DieAt(filter)
		if !ok {
			return fmt.Errorf("no die at %d,%d", filter.X, filter.Y)
		}
		indices = nav.DefectsInDie(die)
	} else {
		indices = make([]int, len(m.Defects))
		for i := range indices {
			indices[i] = i
		}
	}

	fmt.Fprintf(out, "%8s %5s %5s %10s %10s %8s %8s %10s %8s %6s %7s\n",
		"ID", "X", "Y", "XREL", "YREL", "XSIZE", "YSIZE", "AREA", "DSIZE", "CLASS", "DIE")
	fmt.Fprintln(out, "──────────────────────────────────────────────────────────────────────────────────────────────")
	for _, j := range indices {
		d := m.Defects[j]
		inDie := "-"
		if d.TotalInDie > 0 {
			inDie = fmt.Sprintf("%d/%d", d.IndexInDie, d.TotalInDie)
		}
		fmt.Fprintf(out, "%8d %5d %5d %10.3f %10.3f %8.3f %8.3f %10.3f %8.3f %6d %7s\n",
			d.ID, d.XIndex, d.YIndex, d.XRel, d.YRel, d.XSize, d.YSize,
			d.DefectArea, d.DSize, d.ClassNumber, inDie)
	}
	fmt.Fprintf(out, "\n%d defect(s)\n", len(indices))
	return nil
}

// parseCoord reads "X,Y".
func parseCoord(s string) (klarf.Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return klarf.Coord{}, fmt.Errorf("invalid die %q: want X,Y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return klarf.Coord{}, fmt.Errorf("invalid die X %q: %w", xs, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return klarf.Coord{}, fmt.Errorf("invalid die Y %q: %w", ys, err)
	}
	return klarf.Coord{X: x, Y: y}, nil
}
