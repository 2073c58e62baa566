package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

var (
	outputJSON bool
)

// ReportInfo is the structured form of a report header, for programmatic
// access.
type ReportInfo struct {
	Path              string      `json:"path"`
	LotID             string      `json:"lot_id"`
	WaferID           string      `json:"wafer_id"`
	DeviceID          string      `json:"device_id,omitempty"`
	StepID            string      `json:"step_id,omitempty"`
	Slot              int         `json:"slot"`
	InspectionStation string      `json:"inspection_station,omitempty"`
	SetupID           string      `json:"setup_id,omitempty"`
	FileTimestamp     string      `json:"file_timestamp,omitempty"`
	TiffFilename      string      `json:"tiff_filename,omitempty"`
	ImagePath         string      `json:"image_path,omitempty"`
	DiePitch          [2]float64  `json:"die_pitch"`
	SampleCenter      [2]float64  `json:"sample_center"`
	FileVersion       [2]int      `json:"file_version"`
	TotalDies         int         `json:"total_dies"`
	Dies              int         `json:"dies"`
	DefectiveDies     int         `json:"defective_dies"`
	Defects           int         `json:"defects"`
	Warnings          []string    `json:"warnings"`
	Issues            []IssueInfo `json:"issues,omitempty"`
}

// IssueInfo is one skipped field or row.
type IssueInfo struct {
	Line    int    `json:"line"`
	Keyword string `json:"keyword"`
	Error   string `json:"error"`
}

var infoCmd = &cobra.Command{
	Use:   "info <klarf-file>",
	Short: "Show the wafer header of a report",
	Long: `Show the wafer and lot identification, timestamps and counts of a report.

Supports JSON output format for integration with other tools.

Examples:
  klarf info lot42.klarf
  klarf info --json lot42.klarf`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&outputJSON, "json", false,
		"output as JSON (for programmatic access)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	res, err := loadReport(cmd, args[0])
	if err != nil {
		return err
	}
	info := buildReportInfo(res)

	if outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Lot:             %s\n", info.LotID)
	fmt.Fprintf(out, "Wafer:           %s (slot %d)\n", info.WaferID, info.Slot)
	fmt.Fprintf(out, "Device:          %s\n", info.DeviceID)
	fmt.Fprintf(out, "Step:            %s\n", info.StepID)
	fmt.Fprintf(out, "Station:         %s\n", info.InspectionStation)
	fmt.Fprintf(out, "Setup:           %s\n", info.SetupID)
	fmt.Fprintf(out, "File timestamp:  %s\n", info.FileTimestamp)
	fmt.Fprintf(out, "File version:    %d.%d\n", info.FileVersion[0], info.FileVersion[1])
	fmt.Fprintf(out, "Image:           %s\n", info.ImagePath)
	fmt.Fprintf(out, "Die pitch:       %g x %g\n", info.DiePitch[0], info.DiePitch[1])
	fmt.Fprintf(out, "Sample center:   %g, %g\n", info.SampleCenter[0], info.SampleCenter[1])
	fmt.Fprintf(out, "Dies:            %d of %d declared, %d defective\n", info.Dies, info.TotalDies, info.DefectiveDies)
	fmt.Fprintf(out, "Defects:         %d\n", info.Defects)
	printWarnings(out, info.Warnings)
	return nil
}

func buildReportInfo(res *klarf.Result) *ReportInfo {
	m := res.Model
	w := m.Wafer
	info := &ReportInfo{
		Path:              m.Path,
		LotID:             w.LotID,
		WaferID:           w.WaferID,
		DeviceID:          w.DeviceID,
		StepID:            w.StepID,
		Slot:              w.Slot,
		InspectionStation: w.InspectionStation,
		SetupID:           w.SetupID,
		TiffFilename:      w.TiffFilename,
		ImagePath:         m.ImagePath(),
		DiePitch:          [2]float64{w.DiePitch.Width, w.DiePitch.Height},
		SampleCenter:      [2]float64{w.SampleCenter.X, w.SampleCenter.Y},
		FileVersion:       w.FileVersion,
		TotalDies:         w.TotalDies,
		Dies:              len(m.Dies),
		DefectiveDies:     m.DefectiveDies(),
		Defects:           len(m.Defects),
		Warnings:          res.Warnings,
	}
	if info.Warnings == nil {
		info.Warnings = []string{}
	}
	if !w.FileTimestamp.IsZero() {
		info.FileTimestamp = w.FileTimestamp.Format(klarf.TimestampLayout)
	}
	for _, is := range res.Issues {
		info.Issues = append(info.Issues, IssueInfo{
			Line:    is.Line,
			Keyword: is.Keyword,
			Error:   is.Err.Error(),
		})
	}
	return info
}
