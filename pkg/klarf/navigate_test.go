package klarf

import (
	"context"
	"path/filepath"
	"testing"
)

func sampleModel(t *testing.T) *Model {
	t.Helper()
	res, err := quietParser().ParseFile(context.Background(), filepath.Join("testdata", "sample.klarf"))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	return res.Model
}

func TestNavigatorInDie(t *testing.T) {
	nav := NewNavigator(sampleModel(t))

	die, ok := nav.DieAt(Coord{X: 1, Y: 0})
	if !ok || die != 1 {
		t.Fatalf("DieAt(1,0) = %d, %v", die, ok)
	}
	if got := nav.DefectsInDie(die); len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 3 {
		t.Errorf("DefectsInDie = %v, want [0 1 3]", got)
	}

	j, ok := nav.NextInDie(1)
	if !ok || j != 3 {
		t.Errorf("NextInDie(1) = %d, %v, want 3", j, ok)
	}
	if _, ok := nav.NextInDie(3); ok {
		t.Error("NextInDie past the last defect in die")
	}
	j, ok = nav.PrevInDie(3)
	if !ok || j != 1 {
		t.Errorf("PrevInDie(3) = %d, %v, want 1", j, ok)
	}
	if _, ok := nav.PrevInDie(0); ok {
		t.Error("PrevInDie before the first defect in die")
	}
	if _, ok := nav.NextInDie(4); ok {
		t.Error("NextInDie for an unlinked defect")
	}
}

func TestNavigatorGlobal(t *testing.T) {
	nav := NewNavigator(sampleModel(t))

	if j, ok := nav.NextDefect(0); !ok || j != 1 {
		t.Errorf("NextDefect(0) = %d, %v", j, ok)
	}
	if _, ok := nav.NextDefect(4); ok {
		t.Error("NextDefect past the end")
	}
	if _, ok := nav.PrevDefect(0); ok {
		t.Error("PrevDefect before the start")
	}

	// Defective dies are (1,0) and (2,1), die indices 1 and 5.
	if j, ok := nav.NextDefectiveDie(0); !ok || j != 2 {
		t.Errorf("NextDefectiveDie(0) = %d, %v, want defect 2", j, ok)
	}
	if _, ok := nav.NextDefectiveDie(2); ok {
		t.Error("NextDefectiveDie from the last defective die")
	}
	if j, ok := nav.PrevDefectiveDie(2); !ok || j != 0 {
		t.Errorf("PrevDefectiveDie(2) = %d, %v, want defect 0", j, ok)
	}

	if j, ok := nav.FirstDefectAt(Coord{X: 9, Y: 9}); !ok || j != 4 {
		t.Errorf("FirstDefectAt(9,9) = %d, %v", j, ok)
	}
	if _, ok := nav.FirstDefectAt(Coord{X: 0, Y: 0}); ok {
		t.Error("FirstDefectAt found a defect in a clean die")
	}
	if _, ok := nav.DieOf(4); ok {
		t.Error("DieOf for an unlinked defect")
	}
}
