// Package report exports a parsed inspection report as an Excel workbook.
package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

// Sheet names of the exported workbook.
const (
	DefectSheet = "Defects"
	WaferSheet  = "Wafer"
)

// DefectColumns is the header row of the defect sheet.
var DefectColumns = []string{
	"DEFECTID", "XINDEX", "YINDEX", "XSIZE", "YSIZE", "XREL", "YREL",
	"DEFECTAREA", "DSIZE", "DEFECTIDINDIE", "TOTALDEFECTSINDIE",
}

// ErrNoModel is returned when there is nothing to export.
var ErrNoModel = errors.New("report: no model")

// DefectRow returns the cells of one defect in DefectColumns order.
func DefectRow(d klarf.Defect) []any {
	return []any{
		d.ID, d.XIndex, d.YIndex, d.XSize, d.YSize, d.XRel, d.YRel,
		d.DefectArea, d.DSize, d.IndexInDie, d.TotalInDie,
	}
}

// WaferRows returns the key/value pairs written to the wafer sheet.
func WaferRows(m *klarf.Model) [][2]any {
	w := m.Wafer
	ts := func(t time.Time) any {
		if t.IsZero() {
			return ""
		}
		return t.Format(klarf.TimestampLayout)
	}
	return [][2]any{
		{"File", m.Path},
		{"LotID", w.LotID},
		{"WaferID", w.WaferID},
		{"DeviceID", w.DeviceID},
		{"StepID", w.StepID},
		{"Slot", w.Slot},
		{"InspectionStationID", w.InspectionStation},
		{"SetupID", w.SetupID},
		{"FileTimestamp", ts(w.FileTimestamp)},
		{"ResultTimestamp", ts(w.ResultTimestamp)},
		{"TiffFilename", w.TiffFilename},
		{"DiePitchX", w.DiePitch.Width},
		{"DiePitchY", w.DiePitch.Height},
		{"SampleCenterX", w.SampleCenter.X},
		{"SampleCenterY", w.SampleCenter.Y},
		{"TotalDies", w.TotalDies},
		{"Dies", len(m.Dies)},
		{"DefectiveDies", m.DefectiveDies()},
		{"Defects", len(m.Defects)},
	}
}

// Build creates the workbook in memory. The caller must Close it.
func Build(m *klarf.Model) (*excelize.File, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", DefectSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}
	if err := writeDefects(f, m); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeWafer(f, m); err != nil {
		f.Close()
		return nil, err
	}

	now := time.Now().Format(time.RFC3339)
	_ = f.SetDocProps(&excelize.DocProperties{
		Created:  now,
		Modified: now,
		Creator:  "klarf",
		Title:    m.Wafer.LotID + " " + m.Wafer.WaferID,
	})
	return f, nil
}

// WriteWorkbook exports m to an .xlsx file at path.
func WriteWorkbook(path string, m *klarf.Model) error {
	f, err := Build(m)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// Write exports m as an .xlsx stream.
func Write(w io.Writer, m *klarf.Model) error {
	f, err := Build(m)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

func writeDefects(f *excelize.File, m *klarf.Model) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("report: header style: %w", err)
	}

	header := make([]any, len(DefectColumns))
	for i, c := range DefectColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(DefectSheet, "A1", &header); err != nil {
		return fmt.Errorf("report: header: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(DefectColumns))
	_ = f.SetCellStyle(DefectSheet, "A1", last+"1", headerStyle)
	_ = f.SetColWidth(DefectSheet, "A", last, 14)
	_ = f.SetColWidth(DefectSheet, "J", "K", 20)

	for i, d := range m.Defects {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("report: row %d: %w", i+2, err)
		}
		row := DefectRow(d)
		if err := f.SetSheetRow(DefectSheet, cell, &row); err != nil {
			return fmt.Errorf("report: defect %d: %w", d.ID, err)
		}
	}

	if len(m.Defects) > 0 {
		_ = f.AutoFilter(DefectSheet, fmt.Sprintf("A1:%s%d", last, len(m.Defects)+1), nil)
	}
	return nil
}

func writeWafer(f *excelize.File, m *klarf.Model) error {
	if _, err := f.NewSheet(WaferSheet); err != nil {
		return fmt.Errorf("report: new sheet: %w", err)
	}
	keyStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, kv := range WaferRows(m) {
		row := i + 1
		if err := f.SetCellValue(WaferSheet, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return fmt.Errorf("report: wafer row %d: %w", row, err)
		}
		if err := f.SetCellValue(WaferSheet, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return fmt.Errorf("report: wafer row %d: %w", row, err)
		}
	}
	_ = f.SetCellStyle(WaferSheet, "A1", fmt.Sprintf("A%d", len(WaferRows(m))), keyStyle)
	_ = f.SetColWidth(WaferSheet, "A", "A", 22)
	_ = f.SetColWidth(WaferSheet, "B", "B", 40)
	return nil
}
