package klarf

// Navigator answers the stepping queries of a defect review session:
// previous/next defect overall, within the current die, and across
// defective dies. All positions are indices into Model.Defects and
// Model.Dies. A Navigator is read-only and does not observe later changes
// to the model.
type Navigator struct {
	m       *Model
	byCoord map[Coord]int
	owner   []int   // die index per defect, -1 when unlinked
	slot    []int   // position of each defect within its die's list
	perDie  [][]int // defect indices per die, in file order
}

// NewNavigator indexes m.
func NewNavigator(m *Model) *Navigator {
	n := &Navigator{
		m:       m,
		byCoord: make(map[Coord]int, len(m.Dies)),
		owner:   make([]int, len(m.Defects)),
		slot:    make([]int, len(m.Defects)),
		perDie:  make([][]int, len(m.Dies)),
	}
	for i, d := range m.Dies {
		n.byCoord[d.Coord()] = i
	}
	for j, d := range m.Defects {
		i, ok := n.byCoord[d.Coord()]
		if !ok {
			n.owner[j] = -1
			continue
		}
		n.owner[j] = i
		n.slot[j] = len(n.perDie[i])
		n.perDie[i] = append(n.perDie[i], j)
	}
	return n
}

// DieAt returns the index of the die at c.
func (n *Navigator) DieAt(c Coord) (int, bool) {
	i, ok := n.byCoord[c]
	return i, ok
}

// DieOf returns the index of the die owning defect j.
func (n *Navigator) DieOf(j int) (int, bool) {
	if j < 0 || j >= len(n.owner) || n.owner[j] < 0 {
		return 0, false
	}
	return n.owner[j], true
}

// DefectsInDie returns the defect indices of die i in file order. The
// returned slice must not be modified.
func (n *Navigator) DefectsInDie(i int) []int {
	if i < 0 || i >= len(n.perDie) {
		return nil
	}
	return n.perDie[i]
}

// FirstDefectAt returns the first defect, in file order, located in the
// die at c.
func (n *Navigator) FirstDefectAt(c Coord) (int, bool) {
	for j, d := range n.m.Defects {
		if d.Coord() == c {
			return j, true
		}
	}
	return 0, false
}

// NextDefect and PrevDefect step through the whole defect list.
func (n *Navigator) NextDefect(j int) (int, bool) {
	if j < 0 || j+1 >= len(n.m.Defects) {
		return 0, false
	}
	return j + 1, true
}

func (n *Navigator) PrevDefect(j int) (int, bool) {
	if j <= 0 || j >= len(n.m.Defects) {
		return 0, false
	}
	return j - 1, true
}

// NextInDie returns the defect after j in the same die.
func (n *Navigator) NextInDie(j int) (int, bool) {
	i, ok := n.DieOf(j)
	if !ok {
		return 0, false
	}
	list := n.perDie[i]
	if k := n.slot[j] + 1; k < len(list) {
		return list[k], true
	}
	return 0, false
}

// PrevInDie returns the defect before j in the same die.
func (n *Navigator) PrevInDie(j int) (int, bool) {
	i, ok := n.DieOf(j)
	if !ok {
		return 0, false
	}
	if k := n.slot[j] - 1; k >= 0 {
		return n.perDie[i][k], true
	}
	return 0, false
}

// NextDefectiveDie returns the first defect of the next die, in die order,
// that has any defects.
func (n *Navigator) NextDefectiveDie(j int) (int, bool) {
	i, ok := n.DieOf(j)
	if !ok {
		return 0, false
	}
	for k := i + 1; k < len(n.perDie); k++ {
		if len(n.perDie[k]) > 0 {
			return n.perDie[k][0], true
		}
	}
	return 0, false
}

// PrevDefectiveDie returns the first defect of the closest earlier die that
// has any defects.
func (n *Navigator) PrevDefectiveDie(j int) (int, bool) {
	i, ok := n.DieOf(j)
	if !ok {
		return 0, false
	}
	for k := i - 1; k >= 0; k-- {
		if len(n.perDie[k]) > 0 {
			return n.perDie[k][0], true
		}
	}
	return 0, false
}
