package klarf

// Link resolves every defect to the die at its grid coordinate. Dies get
// their defect flag and count; defects get their 1-based position within the
// die (file order) and the die's final defect total. Defects without a
// matching die keep zero values. Link resets derived fields first, so it is
// safe to call more than once.
func Link(m *Model) {
	byCoord := make(map[Coord]int, len(m.Dies))
	for i := range m.Dies {
		m.Dies[i].HasDefect = false
		m.Dies[i].DefectCount = 0
		byCoord[m.Dies[i].Coord()] = i
	}

	// owner[j] is the die index of defect j, or -1.
	owner := make([]int, len(m.Defects))
	for j := range m.Defects {
		d := &m.Defects[j]
		d.IndexInDie = 0
		d.TotalInDie = 0

		i, ok := byCoord[d.Coord()]
		if !ok {
			owner[j] = -1
			continue
		}
		owner[j] = i
		m.Dies[i].DefectCount++
		m.Dies[i].HasDefect = true
		d.IndexInDie = m.Dies[i].DefectCount
	}

	// Second pass: counts are final now.
	for j, i := range owner {
		if i >= 0 {
			m.Defects[j].TotalInDie = m.Dies[i].DefectCount
		}
	}
}
