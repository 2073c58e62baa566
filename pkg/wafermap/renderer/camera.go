package renderer

import (
	"image"

	"gioui.org/f32"

	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/wafermap"
)

// Zoom limits, relative to the fitted layout.
const (
	MinZoom = 0.5
	MaxZoom = 50.0
)

// Camera represents a viewport onto a wafer map layout. Layout units are
// scaled by Zoom and shifted by (PanX, PanY) screen pixels.
type Camera struct {
	Zoom float64

	// Screen position of the layout origin (pixels)
	PanX float64
	PanY float64
}

// NewCamera creates a camera with an identity transform.
func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

// Fit resets the zoom and centres l in a canvas of the given size.
func (c *Camera) Fit(l *wafermap.Layout, size image.Point) {
	off := Offset(l, size)
	c.Zoom = 1
	c.PanX = float64(off.X)
	c.PanY = float64(off.Y)
}

// ToScreen converts layout coordinates to screen coordinates (pixels).
func (c *Camera) ToScreen(x, y float64) (float64, float64) {
	return x*c.Zoom + c.PanX, y*c.Zoom + c.PanY
}

// ToLayout converts screen coordinates (pixels) to layout coordinates.
func (c *Camera) ToLayout(sx, sy float64) (float64, float64) {
	return (sx - c.PanX) / c.Zoom, (sy - c.PanY) / c.Zoom
}

// Pan moves the view by screen pixel offsets.
func (c *Camera) Pan(dx, dy float64) {
	c.PanX += dx
	c.PanY += dy
}

// ZoomAt zooms in/out keeping the layout point under (sx, sy) in place.
// factor > 1 zooms in, factor < 1 zooms out.
func (c *Camera) ZoomAt(sx, sy, factor float64) {
	if factor <= 0 {
		return
	}
	// Get layout position before zoom
	lx, ly := c.ToLayout(sx, sy)

	c.Zoom *= factor
	if c.Zoom < MinZoom {
		c.Zoom = MinZoom
	}
	if c.Zoom > MaxZoom {
		c.Zoom = MaxZoom
	}

	// Keep the point under the cursor stationary
	c.PanX = sx - lx*c.Zoom
	c.PanY = sy - ly*c.Zoom
}

// Affine returns the layout-to-screen transform for op.Affine.
func (c *Camera) Affine() f32.Affine2D {
	z := float32(c.Zoom)
	return f32.Affine2D{}.
		Scale(f32.Pt(0, 0), f32.Pt(z, z)).
		Offset(f32.Pt(float32(c.PanX), float32(c.PanY)))
}
