// Package renderer draws a wafermap.Layout with Gio.
package renderer

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/wafermap"
)

// Options controls what Render draws on top of the die grid.
type Options struct {
	Theme Theme

	// Defects are drawn as markers inside their dies when ShowDefects is
	// set. Pitch converts their XREL/YREL to a position in the cell.
	Defects     []klarf.Defect
	Pitch       klarf.Size
	ShowDefects bool

	// Die is outlined when HighlightDie is set.
	HighlightDie bool
	Die          klarf.Coord

	// Defect is an index into Defects, drawn emphasised when
	// HighlightDefect is set.
	HighlightDefect bool
	Defect          int

	// Camera zooms and pans the map. Nil centres it at its computed size.
	Camera *Camera
}

// Offset returns the translation that centres l in a canvas of the given
// size. It is the pan of a fitted Camera.
func Offset(l *wafermap.Layout, size image.Point) f32.Point {
	if l.Empty() {
		return f32.Point{}
	}
	dx := math.Max(0, (float64(size.X)-l.Width)/2)
	dy := math.Max(0, (float64(size.Y)-l.Height)/2)
	return f32.Pt(float32(dx), float32(dy))
}

// Render paints the background, the wafer disc, every die cell and the
// optional defect markers and highlights into gtx.Ops, clipped to
// gtx.Constraints.Max.
func Render(gtx layout.Context, l *wafermap.Layout, opts Options) {
	pal := PaletteFor(opts.Theme)
	size := gtx.Constraints.Max

	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, pal.Background)
	if l.Empty() {
		return
	}

	cam := opts.Camera
	if cam == nil {
		cam = NewCamera()
		cam.Fit(l, size)
	}
	stack := op.Affine(cam.Affine()).Push(gtx.Ops)
	defer stack.Pop()

	renderWafer(gtx, l, pal)

	border := borderWidth(l)
	for _, c := range l.Cells {
		fillRect(gtx, c.Rect, cellColor(c, l.Synthetic, pal))
		if border > 0 {
			strokeRect(gtx, c.Rect, border, pal.DieBorder)
		}
	}

	if opts.ShowDefects && !l.Synthetic {
		renderDefects(gtx, l, opts, pal)
	}

	if opts.HighlightDie {
		if c, ok := l.Cell(opts.Die); ok {
			strokeRect(gtx, c.Rect, max(2, border*2), pal.Selected)
		}
	}
}

func cellColor(c wafermap.Cell, synthetic bool, pal Palette) color.NRGBA {
	switch {
	case synthetic:
		return pal.DieSynthetic
	case c.HasDefect:
		return pal.DieDefect
	default:
		return pal.Die
	}
}

// borderWidth returns 0 once cells get too small for an outline to be
// anything but noise.
func borderWidth(l *wafermap.Layout) float32 {
	if math.Min(l.CellWidth, l.CellHeight) < 4 {
		return 0
	}
	return 1
}

func markerRadius(l *wafermap.Layout) float64 {
	return math.Max(1.5, math.Min(l.CellWidth, l.CellHeight)*0.08)
}

// renderWafer draws the disc the grid sits on, half a die larger than the
// grid's bounding box.
func renderWafer(gtx layout.Context, l *wafermap.Layout, pal Palette) {
	padX, padY := l.CellWidth/2, l.CellHeight/2
	rect := image.Rectangle{
		Min: image.Pt(int(math.Floor(-padX)), int(math.Floor(-padY))),
		Max: image.Pt(int(math.Ceil(l.Width+padX)), int(math.Ceil(l.Height+padY))),
	}
	paint.FillShape(gtx.Ops, pal.Wafer, clip.Ellipse(rect).Op(gtx.Ops))
}

func renderDefects(gtx layout.Context, l *wafermap.Layout, opts Options, pal Palette) {
	r := markerRadius(l)
	for j, d := range opts.Defects {
		c, ok := l.Cell(d.Coord())
		if !ok {
			continue
		}
		x, y := wafermap.DefectPoint(c, d, opts.Pitch)
		if opts.HighlightDefect && j == opts.Defect {
			continue
		}
		fillCircle(gtx, x, y, r, pal.Defect)
	}

	// Selected marker last so it stays on top.
	if opts.HighlightDefect && opts.Defect >= 0 && opts.Defect < len(opts.Defects) {
		d := opts.Defects[opts.Defect]
		if c, ok := l.Cell(d.Coord()); ok {
			x, y := wafermap.DefectPoint(c, d, opts.Pitch)
			fillCircle(gtx, x, y, r*2, pal.DefectSelected)
		}
	}
}

func rectPath(gtx layout.Context, r wafermap.Rect) clip.PathSpec {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(float32(r.X), float32(r.Y)))
	path.LineTo(f32.Pt(float32(r.X+r.W), float32(r.Y)))
	path.LineTo(f32.Pt(float32(r.X+r.W), float32(r.Y+r.H)))
	path.LineTo(f32.Pt(float32(r.X), float32(r.Y+r.H)))
	path.Close()
	return path.End()
}

func fillRect(gtx layout.Context, r wafermap.Rect, c color.NRGBA) {
	paint.FillShape(gtx.Ops, c, clip.Outline{Path: rectPath(gtx, r)}.Op())
}

func strokeRect(gtx layout.Context, r wafermap.Rect, width float32, c color.NRGBA) {
	paint.FillShape(gtx.Ops, c, clip.Stroke{
		Path:  rectPath(gtx, r),
		Width: width,
	}.Op())
}

func fillCircle(gtx layout.Context, x, y, radius float64, c color.NRGBA) {
	stack := op.Affine(f32.Affine2D{}.Offset(f32.Pt(float32(x), float32(y)))).Push(gtx.Ops)
	defer stack.Pop()

	rect := image.Rectangle{
		Min: image.Pt(int(-radius), int(-radius)),
		Max: image.Pt(int(math.Ceil(radius)), int(math.Ceil(radius))),
	}
	paint.FillShape(gtx.Ops, c, clip.Ellipse(rect).Op(gtx.Ops))
}
