package wafermap

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

func TestCellAt(t *testing.T) {
	// Holes at (1,1) and the corner (2,0).
	dies := grid([2]int{0, 0}, [2]int{1, 0}, [2]int{0, 1}, [2]int{2, 1})
	l := Compute(dies, klarf.Size{Width: 1, Height: 1}, 300, 200)

	tests := []struct {
		name string
		x, y float64
		want klarf.Coord
		ok   bool
	}{
		{"bottom left", 10, 150, klarf.Coord{X: 0, Y: 0}, true},
		{"top left", 99, 0, klarf.Coord{X: 0, Y: 1}, true},
		{"top right", 250, 50, klarf.Coord{X: 2, Y: 1}, true},
		{"edge belongs right", 100, 150, klarf.Coord{X: 1, Y: 0}, true},
		{"hole", 150, 50, klarf.Coord{}, false},
		{"missing corner", 250, 150, klarf.Coord{}, false},
		{"outside", 300, 10, klarf.Coord{}, false},
		{"negative", -1, 10, klarf.Coord{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := l.CellAt(tt.x, tt.y)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && c.Coord() != tt.want {
				t.Errorf("got %v, want %v", c.Coord(), tt.want)
			}
			if ok && !c.Rect.Contains(tt.x, tt.y) {
				t.Errorf("cell %+v does not contain point", c.Rect)
			}
		})
	}
}

func TestCellAtNilLayout(t *testing.T) {
	var l *Layout
	if _, ok := l.CellAt(1, 1); ok {
		t.Error("nil layout returned a cell")
	}
}

func TestDefectPoint(t *testing.T) {
	c := Cell{Rect: Rect{X: 100, Y: 50, W: 40, H: 20}}
	pitch := klarf.Size{Width: 4000, Height: 2000}

	tests := []struct {
		name       string
		xrel, yrel float64
		x, y       float64
	}{
		{"origin is bottom left", 0, 0, 100, 70},
		{"centre", 2000, 1000, 120, 60},
		{"far corner", 4000, 2000, 140, 50},
		{"clamped", 9000, -5, 140, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := DefectPoint(c, klarf.Defect{XRel: tt.xrel, YRel: tt.yrel}, pitch)
			if !near(x, tt.x) || !near(y, tt.y) {
				t.Errorf("got (%v, %v), want (%v, %v)", x, y, tt.x, tt.y)
			}
		})
	}
}
