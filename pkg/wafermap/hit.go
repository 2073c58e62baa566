package wafermap

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

// CellAt returns the cell under the canvas point (x, y), if any.
func (l *Layout) CellAt(x, y float64) (Cell, bool) {
	if l.Empty() || l.CellWidth <= 0 || l.CellHeight <= 0 {
		return Cell{}, false
	}
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return Cell{}, false
	}
	col := int(math.Floor(x / l.CellWidth))
	row := int(math.Floor(y / l.CellHeight))
	return l.Cell(klarf.Coord{X: l.MinX + col, Y: l.MaxY - row})
}

// Cell returns the cell of the die at c.
func (l *Layout) Cell(c klarf.Coord) (Cell, bool) {
	if l.Empty() {
		return Cell{}, false
	}
	i, ok := l.byCoord[c]
	if !ok {
		return Cell{}, false
	}
	return l.Cells[i], true
}

// DefectPoint returns the canvas position of a defect marker inside its
// die cell. XRel/YRel are measured from the die's lower-left corner in the
// same physical units as pitch; the result is clamped to the cell.
func DefectPoint(c Cell, d klarf.Defect, pitch klarf.Size) (float64, float64) {
	pitch = normalizePitch(pitch)
	fx := clamp01(d.XRel / pitch.Width)
	fy := clamp01(d.YRel / pitch.Height)
	x := c.Rect.X + fx*c.Rect.W
	y := c.Rect.Y + c.Rect.H - fy*c.Rect.H
	return x, y
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
