// Package wafermap computes the on-screen geometry of a wafer die grid.
//
// Compute is a pure function: the same dies, pitch and canvas always give
// the same Layout, so callers simply recompute it whenever the canvas is
// resized.
package wafermap

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

// Rect is an axis-aligned rectangle in canvas units. The canvas origin is
// the top-left corner, Y grows downwards.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r. The right and bottom edges
// belong to the neighbouring cell.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Cell is the placed rectangle of one die.
type Cell struct {
	// DieIndex is the index into the die slice given to Compute, or -1 for
	// cells of the synthetic grid.
	DieIndex    int
	XIndex      int
	YIndex      int
	Rect        Rect
	HasDefect   bool
	DefectCount int
}

// Coord returns the die-grid coordinate of the cell.
func (c Cell) Coord() klarf.Coord {
	return klarf.Coord{X: c.XIndex, Y: c.YIndex}
}

// Layout is the result of Compute.
type Layout struct {
	Cells []Cell

	// Width and Height are the extent of the whole grid.
	Width  float64
	Height float64

	// CellWidth and CellHeight are the size of every die rectangle.
	CellWidth  float64
	CellHeight float64

	MinX, MaxX int
	MinY, MaxY int

	// Synthetic is set when the input had no dies and the placeholder
	// circular grid was laid out instead.
	Synthetic bool

	byCoord map[klarf.Coord]int
}

// Empty reports whether the layout has nothing to draw.
func (l *Layout) Empty() bool {
	return l == nil || len(l.Cells) == 0
}

type options struct {
	preserveAspect bool
}

// Option configures Compute.
type Option func(*options)

// PreserveAspect scales both axes by the smaller of the two scale factors so
// die rectangles keep the physical pitch ratio. The grid then no longer
// fills the canvas along the longer axis.
func PreserveAspect() Option {
	return func(o *options) {
		o.preserveAspect = true
	}
}

// Compute places every die on a width x height canvas. A non-positive pitch
// component is treated as 1. With no dies the synthetic circular grid is
// laid out instead. A non-positive canvas gives an empty layout.
func Compute(dies []klarf.Die, pitch klarf.Size, width, height float64, opts ...Option) *Layout {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return &Layout{}
	}
	pitch = normalizePitch(pitch)

	synthetic := len(dies) == 0
	if synthetic {
		dies = SyntheticDies(SyntheticRadius)
	}

	l := &Layout{Synthetic: synthetic}
	l.MinX, l.MaxX, l.MinY, l.MaxY = bounds(dies)

	spanX := float64(l.MaxX - l.MinX + 1)
	spanY := float64(l.MaxY - l.MinY + 1)

	// Physical extent of the grid and the canvas units per physical unit.
	scaleX := width / (spanX * pitch.Width)
	scaleY := height / (spanY * pitch.Height)
	if o.preserveAspect {
		s := math.Min(scaleX, scaleY)
		scaleX, scaleY = s, s
	}

	l.CellWidth = pitch.Width * scaleX
	l.CellHeight = pitch.Height * scaleY
	l.Width = spanX * l.CellWidth
	l.Height = spanY * l.CellHeight

	l.Cells = make([]Cell, len(dies))
	l.byCoord = make(map[klarf.Coord]int, len(dies))
	for i, d := range dies {
		idx := i
		if synthetic {
			idx = -1
		}
		l.Cells[i] = Cell{
			DieIndex: idx,
			XIndex:   d.XIndex,
			YIndex:   d.YIndex,
			Rect: Rect{
				X: float64(d.XIndex-l.MinX) * l.CellWidth,
				Y: float64(l.MaxY-d.YIndex) * l.CellHeight,
				W: l.CellWidth,
				H: l.CellHeight,
			},
			HasDefect:   d.HasDefect,
			DefectCount: d.DefectCount,
		}
		if _, dup := l.byCoord[d.Coord()]; !dup {
			l.byCoord[d.Coord()] = i
		}
	}
	return l
}

func normalizePitch(p klarf.Size) klarf.Size {
	if !(p.Width > 0) || math.IsInf(p.Width, 0) {
		p.Width = 1
	}
	if !(p.Height > 0) || math.IsInf(p.Height, 0) {
		p.Height = 1
	}
	return p
}

func bounds(dies []klarf.Die) (minX, maxX, minY, maxY int) {
	minX, maxX = dies[0].XIndex, dies[0].XIndex
	minY, maxY = dies[0].YIndex, dies[0].YIndex
	for _, d := range dies[1:] {
		minX = min(minX, d.XIndex)
		maxX = max(maxX, d.XIndex)
		minY = min(minY, d.YIndex)
		maxY = max(maxY, d.YIndex)
	}
	return minX, maxX, minY, maxY
}
