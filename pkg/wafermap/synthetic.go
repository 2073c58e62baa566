package wafermap

import "github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"

// SyntheticRadius is the radius, in dies, of the placeholder grid drawn
// when a report has no die list.
const SyntheticRadius = 10

// SyntheticDies returns a roughly circular die grid centred on (0, 0): a die
// exists wherever x*x + y*y < r*r. Dies are ordered by row, then column, and
// numbered from 1.
func SyntheticDies(r int) []klarf.Die {
	if r <= 0 {
		return nil
	}
	var dies []klarf.Die
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y < r*r {
				dies = append(dies, klarf.Die{XIndex: x, YIndex: y, ID: len(dies) + 1})
			}
		}
	}
	return dies
}
