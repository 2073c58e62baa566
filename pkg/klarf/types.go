package klarf

import (
	"fmt"
	"path/filepath"
	"time"
)

// Size is a width/height pair in physical units (typically microns).
type Size struct {
	Width  float64
	Height float64
}

// Point is an X/Y pair in physical units.
type Point struct {
	X float64
	Y float64
}

// Coord identifies a die on the wafer grid.
type Coord struct {
	X int
	Y int
}

// WaferInfo holds the scalar header of an inspection file. Each keyword
// only ever overwrites its own field, in file order.
type WaferInfo struct {
	WaferID           string
	DeviceID          string
	LotID             string
	Slot              int
	StepID            string
	SampleType        string
	InspectionStation string
	TiffFilename      string

	DiePitch     Size
	DieOrigin    Point
	SampleCenter Point

	FileTimestamp   time.Time
	ResultTimestamp time.Time

	SetupID        string
	SetupTimestamp time.Time

	FileVersion             [2]int
	SampleSize              [2]int
	OrientationMarkLocation string

	// TotalDies is the count declared by SampleTestPlan, which may differ
	// from the number of dies actually parsed.
	TotalDies int
}

// Die is one entry of the sample test plan.
type Die struct {
	XIndex int
	YIndex int

	// ID is the 1-based ordinal of the die in parse order.
	ID int

	HasDefect   bool
	DefectCount int
}

// Coord returns the grid coordinate of the die.
func (d Die) Coord() Coord {
	return Coord{X: d.XIndex, Y: d.YIndex}
}

// Defect is one row of the defect list.
type Defect struct {
	ID     int
	XIndex int
	YIndex int

	XRel float64 // position relative to the die origin
	YRel float64

	XSize      float64
	YSize      float64
	DefectArea float64
	DSize      float64 // equivalent diameter

	ClassNumber   int
	Test          int
	ClusterNumber int
	RoughBin      int
	FineBin       int
	ReviewSample  int
	ImageCount    int
	ImageID       int // first entry of IMAGELIST

	// Populated by Link. Both stay zero when no die matches the coordinates.
	IndexInDie int
	TotalInDie int
}

// Coord returns the grid coordinate of the die that owns the defect.
func (d Defect) Coord() Coord {
	return Coord{X: d.XIndex, Y: d.YIndex}
}

// Model is the linked result of one parse. Dies and Defects are flat arenas;
// cross references between them are by index or by Coord, never by pointer.
type Model struct {
	Path    string
	Wafer   WaferInfo
	Dies    []Die
	Defects []Defect
}

// ImagePath resolves the TIFF image referenced by the header relative to the
// directory of the source file. It returns "" when no image is named.
func (m *Model) ImagePath() string {
	if m.Wafer.TiffFilename == "" {
		return ""
	}
	if filepath.IsAbs(m.Wafer.TiffFilename) || m.Path == "" {
		return m.Wafer.TiffFilename
	}
	return filepath.Join(filepath.Dir(m.Path), m.Wafer.TiffFilename)
}

// DefectiveDies returns the number of dies with at least one linked defect.
func (m *Model) DefectiveDies() int {
	n := 0
	for _, d := range m.Dies {
		if d.HasDefect {
			n++
		}
	}
	return n
}

// Issue records a field or row that could not be extracted. The parse keeps
// going after an issue; the affected value keeps its default.
type Issue struct {
	Line    int // 1-based source line
	Keyword string
	Err     error
}

func (i Issue) Error() string {
	if i.Keyword == "" {
		return fmt.Sprintf("line %d: %v", i.Line, i.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", i.Line, i.Keyword, i.Err)
}

func (i Issue) Unwrap() error {
	return i.Err
}

// Result is what a parse hands back to the caller: the linked model, the
// completeness warnings from Validate, and the anomalies absorbed on the way.
type Result struct {
	Model    *Model
	Warnings []string
	Issues   []Issue
}
