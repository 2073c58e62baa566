package wafermap

import (
	"math"
	"reflect"
	"testing"

	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

func grid(coords ...[2]int) []klarf.Die {
	dies := make([]klarf.Die, len(coords))
	for i, c := range coords {
		dies[i] = klarf.Die{XIndex: c[0], YIndex: c[1], ID: i + 1}
	}
	return dies
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeRectangles(t *testing.T) {
	dies := grid([2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}, [2]int{0, 1}, [2]int{1, 1}, [2]int{2, 1})
	l := Compute(dies, klarf.Size{Width: 10, Height: 20}, 300, 200)

	if l.Synthetic {
		t.Fatal("layout unexpectedly synthetic")
	}
	if l.MinX != 0 || l.MaxX != 2 || l.MinY != 0 || l.MaxY != 1 {
		t.Errorf("bounds = %d..%d, %d..%d", l.MinX, l.MaxX, l.MinY, l.MaxY)
	}
	if !near(l.CellWidth, 100) || !near(l.CellHeight, 100) {
		t.Errorf("cell = %v x %v, want 100 x 100", l.CellWidth, l.CellHeight)
	}
	if !near(l.Width, 300) || !near(l.Height, 200) {
		t.Errorf("extent = %v x %v", l.Width, l.Height)
	}

	tests := []struct {
		die  int
		x, y float64
	}{
		{0, 0, 100},   // (0,0) bottom-left
		{2, 200, 100}, // (2,0) bottom-right
		{3, 0, 0},     // (0,1) top-left
		{5, 200, 0},   // (2,1) top-right
	}
	for _, tt := range tests {
		r := l.Cells[tt.die].Rect
		if !near(r.X, tt.x) || !near(r.Y, tt.y) {
			t.Errorf("die %d at (%v, %v), want (%v, %v)", tt.die, r.X, r.Y, tt.x, tt.y)
		}
		if l.Cells[tt.die].DieIndex != tt.die {
			t.Errorf("cell %d DieIndex = %d", tt.die, l.Cells[tt.die].DieIndex)
		}
	}
}

func TestComputeYInverted(t *testing.T) {
	l := Compute(grid([2]int{0, -3}, [2]int{0, 4}), klarf.Size{Width: 1, Height: 1}, 10, 80)
	lo, hi := l.Cells[0].Rect, l.Cells[1].Rect
	if !(hi.Y < lo.Y) {
		t.Errorf("higher die row drawn below: y(4)=%v y(-3)=%v", hi.Y, lo.Y)
	}
	if !near(hi.Y, 0) {
		t.Errorf("top row at %v, want 0", hi.Y)
	}
}

func TestComputeSpanBound(t *testing.T) {
	dies := grid([2]int{-5, 0}, [2]int{-2, 1}, [2]int{0, 0}, [2]int{3, -1}, [2]int{4, 2})
	l := Compute(dies, klarf.Size{Width: 3963, Height: 4123}, 640, 480)

	distinct := l.MaxX - l.MinX + 1
	bound := l.CellWidth * float64(distinct)
	if !near(bound, l.Width) {
		t.Errorf("span %v != extent %v", bound, l.Width)
	}
	for _, c := range l.Cells {
		if c.Rect.X < -1e-9 || c.Rect.X+c.Rect.W > bound+1e-9 {
			t.Errorf("cell %v outside [0, %v]: %+v", c.Coord(), bound, c.Rect)
		}
		if c.Rect.Y < -1e-9 || c.Rect.Y+c.Rect.H > l.Height+1e-9 {
			t.Errorf("cell %v outside vertical extent: %+v", c.Coord(), c.Rect)
		}
	}
}

func TestComputeIdempotent(t *testing.T) {
	dies := grid([2]int{0, 0}, [2]int{1, 1}, [2]int{-1, 2})
	pitch := klarf.Size{Width: 7.3, Height: 2.9}
	a := Compute(dies, pitch, 333, 777)
	b := Compute(dies, pitch, 333, 777)
	if !reflect.DeepEqual(a, b) {
		t.Error("Compute is not repeatable")
	}
}

func TestComputeDefaultPitch(t *testing.T) {
	dies := grid([2]int{0, 0}, [2]int{1, 0})
	a := Compute(dies, klarf.Size{}, 100, 100)
	b := Compute(dies, klarf.Size{Width: -4, Height: math.NaN()}, 100, 100)
	c := Compute(dies, klarf.Size{Width: 1, Height: 1}, 100, 100)
	if !reflect.DeepEqual(a.Cells, c.Cells) || !reflect.DeepEqual(b.Cells, c.Cells) {
		t.Error("non-positive pitch not treated as 1")
	}
}

func TestComputeEmptyDiesSynthetic(t *testing.T) {
	l := Compute(nil, klarf.Size{}, 400, 400)
	if !l.Synthetic {
		t.Error("Synthetic not set")
	}
	if l.Empty() {
		t.Fatal("synthetic layout is empty")
	}
	for _, c := range l.Cells {
		if c.DieIndex != -1 {
			t.Fatalf("synthetic cell has DieIndex %d", c.DieIndex)
		}
		if c.XIndex*c.XIndex+c.YIndex*c.YIndex >= SyntheticRadius*SyntheticRadius {
			t.Errorf("cell %v outside the circle", c.Coord())
		}
	}
	if l.MinX != -(SyntheticRadius-1) || l.MaxX != SyntheticRadius-1 {
		t.Errorf("synthetic X bounds = %d..%d", l.MinX, l.MaxX)
	}
}

func TestComputeDegenerateCanvas(t *testing.T) {
	dies := grid([2]int{0, 0})
	for _, size := range [][2]float64{{0, 100}, {100, 0}, {-1, -1}, {math.NaN(), 10}, {math.Inf(1), 10}} {
		l := Compute(dies, klarf.Size{Width: 1, Height: 1}, size[0], size[1])
		if !l.Empty() {
			t.Errorf("canvas %v: got %d cells, want none", size, len(l.Cells))
		}
		if _, ok := l.CellAt(0, 0); ok {
			t.Errorf("canvas %v: CellAt found a cell", size)
		}
	}
}

func TestComputePreserveAspect(t *testing.T) {
	dies := grid([2]int{0, 0}, [2]int{1, 0}, [2]int{0, 1}, [2]int{1, 1})
	l := Compute(dies, klarf.Size{Width: 2, Height: 1}, 400, 400, PreserveAspect())
	if !near(l.CellWidth/l.CellHeight, 2) {
		t.Errorf("aspect = %v, want 2", l.CellWidth/l.CellHeight)
	}
	if l.Width > 400+1e-9 || l.Height > 400+1e-9 {
		t.Errorf("extent %v x %v exceeds canvas", l.Width, l.Height)
	}
	if !near(l.Width, 400) {
		t.Errorf("limiting axis not filled: width %v", l.Width)
	}
}

func TestSyntheticDies(t *testing.T) {
	if got := SyntheticDies(0); got != nil {
		t.Errorf("SyntheticDies(0) = %v", got)
	}
	// r=2 keeps the 3x3 block; (2,0) and friends sit on the circle.
	got := SyntheticDies(2)
	if len(got) != 9 {
		t.Errorf("SyntheticDies(2) has %d dies, want 9", len(got))
	}
	for i, d := range got {
		if d.ID != i+1 {
			t.Errorf("die %d ID = %d", i, d.ID)
		}
	}
}
