package renderer

import (
	"image/color"
	"strings"
)

// Theme selects a colour palette.
type Theme int

const (
	ThemeClassic Theme = iota
	ThemeDark
	ThemeMono
)

// ThemeNames maps theme enum to its configuration name.
var ThemeNames = map[Theme]string{
	ThemeClassic: "classic",
	ThemeDark:    "dark",
	ThemeMono:    "mono",
}

func (t Theme) String() string {
	if name, ok := ThemeNames[t]; ok {
		return name
	}
	return "classic"
}

// ParseTheme looks a theme up by name, ignoring case.
func ParseTheme(name string) (Theme, bool) {
	for t, n := range ThemeNames {
		if strings.EqualFold(n, name) {
			return t, true
		}
	}
	return ThemeClassic, false
}

// Palette holds every colour the renderer uses.
type Palette struct {
	Background     color.NRGBA
	Wafer          color.NRGBA // wafer disc behind the dies
	Die            color.NRGBA // die without defects
	DieDefect      color.NRGBA // die with at least one defect
	DieSynthetic   color.NRGBA // placeholder grid
	DieBorder      color.NRGBA
	Selected       color.NRGBA // outline of the selected die
	Defect         color.NRGBA
	DefectSelected color.NRGBA
}

var classicPalette = Palette{
	Background:     color.NRGBA{R: 240, G: 240, B: 240, A: 255},
	Wafer:          color.NRGBA{R: 200, G: 205, B: 215, A: 255},
	Die:            color.NRGBA{R: 80, G: 170, B: 90, A: 255},   // green
	DieDefect:      color.NRGBA{R: 215, G: 60, B: 50, A: 255},   // red
	DieSynthetic:   color.NRGBA{R: 170, G: 175, B: 185, A: 255}, // gray
	DieBorder:      color.NRGBA{R: 40, G: 40, B: 40, A: 255},
	Selected:       color.NRGBA{R: 30, G: 90, B: 230, A: 255},
	Defect:         color.NRGBA{R: 250, G: 220, B: 40, A: 255},
	DefectSelected: color.NRGBA{R: 0, G: 220, B: 255, A: 255},
}

var darkPalette = Palette{
	Background:     color.NRGBA{R: 0, G: 16, B: 35, A: 255},
	Wafer:          color.NRGBA{R: 30, G: 40, B: 60, A: 255},
	Die:            color.NRGBA{R: 25, G: 95, B: 55, A: 255},
	DieDefect:      color.NRGBA{R: 179, G: 31, B: 31, A: 255},
	DieSynthetic:   color.NRGBA{R: 60, G: 70, B: 85, A: 255},
	DieBorder:      color.NRGBA{R: 0, G: 0, B: 0, A: 255},
	Selected:       color.NRGBA{R: 242, G: 237, B: 161, A: 255},
	Defect:         color.NRGBA{R: 255, G: 200, B: 0, A: 255},
	DefectSelected: color.NRGBA{R: 2, G: 255, B: 238, A: 255},
}

var monoPalette = Palette{
	Background:     color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	Wafer:          color.NRGBA{R: 235, G: 235, B: 235, A: 255},
	Die:            color.NRGBA{R: 210, G: 210, B: 210, A: 255},
	DieDefect:      color.NRGBA{R: 90, G: 90, B: 90, A: 255},
	DieSynthetic:   color.NRGBA{R: 225, G: 225, B: 225, A: 255},
	DieBorder:      color.NRGBA{R: 0, G: 0, B: 0, A: 255},
	Selected:       color.NRGBA{R: 0, G: 0, B: 0, A: 255},
	Defect:         color.NRGBA{R: 0, G: 0, B: 0, A: 255},
	DefectSelected: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
}

// PaletteFor returns the palette of theme t. Unknown themes get the classic
// palette.
func PaletteFor(t Theme) Palette {
	switch t {
	case ThemeDark:
		return darkPalette
	case ThemeMono:
		return monoPalette
	default:
		return classicPalette
	}
}
