package cmd

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/oligo/gioview/theme"
	"github.com/spf13/cobra"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenTraceLab/OpenTraceKlarf/internal/config"
	"github.com/OpenTraceLab/OpenTraceKlarf/internal/ctxlog"
	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/wafermap"
	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/wafermap/renderer"
)

var viewCmd = &cobra.Command{
	Use:   "view <klarf-file>",
	Short: "View the wafer map in an interactive window",
	Long: `Opens the report in a Gio-based wafer map viewer. The report is parsed in
the background; the map is laid out again whenever the window is resized.

Controls:
  Left Click        - Select die (and its first defect)
  Right-drag        - Pan
  Scroll Wheel      - Zoom in/out
  F                 - Fit wafer to window
  N / P             - Next / previous defect
  Right / Left      - Next / previous defect in the same die
  Down / Up         - Next / previous defective die
  D                 - Toggle defect markers
  A                 - Toggle aspect-preserving layout
  T                 - Cycle colour theme (saved to the config file)
  Q / Escape        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	filename := args[0]
	if _, err := os.Stat(filename); err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)

	v := newViewer(filename, cfg.View, logger)

	w := new(app.Window)
	w.Option(app.Title("Wafer Map - " + filename))
	w.Option(app.Size(unit.Dp(float32(cfg.View.Width)), unit.Dp(float32(cfg.View.Height))))

	// Close the window on interrupt so run returns normally.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			w.Perform(system.ActionClose)
		case <-done:
		}
	}()

	go v.load(ctx, w)
	if err := v.run(w); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}

type viewer struct {
	path   string
	logger *slog.Logger
	th     *theme.Theme
	warn   *widget.Icon

	// Written by the loader goroutine.
	mu       sync.Mutex
	progress float64
	res      *klarf.Result
	loadErr  error

	// Owned by the window goroutine.
	nav       *klarf.Navigator
	wmap      *wafermap.Layout
	size      image.Point
	camera    *renderer.Camera
	dragging  bool
	lastPos   f32.Point
	settings  config.View
	theme     renderer.Theme
	die       klarf.Coord
	hasDie    bool
	defect    int
	hasDefect bool
}

func newViewer(path string, settings config.View, logger *slog.Logger) *viewer {
	v := &viewer{
		path:     path,
		logger:   logger,
		th:       theme.NewTheme("", nil, true),
		settings: settings,
		camera:   renderer.NewCamera(),
	}
	if t, ok := renderer.ParseTheme(settings.Theme); ok {
		v.theme = t
	} else {
		logger.Warn("Unknown theme, using classic.", "theme", settings.Theme)
	}
	if icon, err := widget.NewIcon(icons.AlertWarning); err == nil {
		v.warn = icon
	} else {
		logger.Debug("Failed to load warning icon.", "err", err)
	}
	return v
}

// load parses the report off the window goroutine, invalidating the
// window as progress arrives.
func (v *viewer) load(ctx context.Context, w *app.Window) {
	progress := make(chan float64, 1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case p := <-progress:
				v.mu.Lock()
				v.progress = p
				v.mu.Unlock()
				w.Invalidate()
			case <-done:
				return
			}
		}
	}()

	parser := klarf.NewParser(klarf.WithLogger(v.logger), klarf.WithProgress(progress))
	res, err := parser.ParseFile(ctx, v.path)
	close(done)

	v.mu.Lock()
	v.res, v.loadErr, v.progress = res, err, 1
	v.mu.Unlock()
	w.Invalidate()
}

func (v *viewer) run(w *app.Window) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			v.adopt()

			// Handle keyboard events
			for {
				ev, ok := gtx.Event(key.Filter{})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					if v.handleKey(ke.Name) {
						return nil // Close window
					}
					w.Invalidate()
				}
			}

			layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Flexed(1, v.layoutMap),
				layout.Rigid(v.layoutStatus),
			)
			e.Frame(gtx.Ops)
		}
	}
}

// adopt picks up a finished parse.
func (v *viewer) adopt() {
	if v.nav != nil {
		return
	}
	v.mu.Lock()
	res := v.res
	v.mu.Unlock()
	if res == nil {
		return
	}
	v.nav = klarf.NewNavigator(res.Model)
	v.wmap = nil
	if len(res.Model.Defects) > 0 {
		v.selectDefect(0)
	}
}

func (v *viewer) model() *klarf.Model {
	if v.nav == nil {
		return nil
	}
	return v.res.Model
}

// relayout recomputes the die rectangles when the map area changed size.
func (v *viewer) relayout(size image.Point) {
	if v.wmap != nil && size == v.size {
		return
	}
	v.size = size

	var (
		dies  []klarf.Die
		pitch klarf.Size
	)
	if m := v.model(); m != nil {
		dies, pitch = m.Dies, m.Wafer.DiePitch
	}
	var opts []wafermap.Option
	if v.settings.PreserveAspect {
		opts = append(opts, wafermap.PreserveAspect())
	}
	v.wmap = wafermap.Compute(dies, pitch, float64(size.X), float64(size.Y), opts...)
	v.camera.Fit(v.wmap, size)
}

func (v *viewer) layoutMap(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, v)

	// Hit-test against the layout that was on screen.
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  v,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: math.MinInt32, Max: math.MaxInt32},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			if pe.Buttons == pointer.ButtonPrimary {
				v.click(pe.Position.X, pe.Position.Y)
			} else if pe.Buttons == pointer.ButtonSecondary {
				v.dragging = true
				v.lastPos = pe.Position
			}

		case pointer.Drag:
			if v.dragging {
				v.camera.Pan(float64(pe.Position.X-v.lastPos.X), float64(pe.Position.Y-v.lastPos.Y))
				v.lastPos = pe.Position
				gtx.Execute(op.InvalidateCmd{})
			}

		case pointer.Release:
			v.dragging = false

		case pointer.Scroll:
			// Zoom at cursor position
			factor := 1.0 - float64(pe.Scroll.Y)*0.1
			v.camera.ZoomAt(float64(pe.Position.X), float64(pe.Position.Y), factor)
			gtx.Execute(op.InvalidateCmd{})
		}
	}

	v.relayout(size)
	renderer.Render(gtx, v.wmap, v.renderOptions())
	return layout.Dimensions{Size: size}
}

func (v *viewer) renderOptions() renderer.Options {
	opts := renderer.Options{
		Theme:           v.theme,
		ShowDefects:     v.settings.ShowDefects,
		HighlightDie:    v.hasDie,
		Die:             v.die,
		HighlightDefect: v.hasDefect,
		Defect:          v.defect,
		Camera:          v.camera,
	}
	if m := v.model(); m != nil {
		opts.Defects = m.Defects
		opts.Pitch = m.Wafer.DiePitch
	}
	return opts
}

func (v *viewer) click(x, y float32) {
	if v.wmap == nil || v.nav == nil {
		return
	}
	lx, ly := v.camera.ToLayout(float64(x), float64(y))
	cell, ok := v.wmap.CellAt(lx, ly)
	if !ok || cell.DieIndex < 0 {
		return
	}
	v.die, v.hasDie = cell.Coord(), true
	if j, ok := v.nav.FirstDefectAt(cell.Coord()); ok {
		v.defect, v.hasDefect = j, true
	} else {
		v.hasDefect = false
	}
}

func (v *viewer) selectDefect(j int) {
	m := v.model()
	if m == nil || j < 0 || j >= len(m.Defects) {
		return
	}
	v.defect, v.hasDefect = j, true
	_, v.hasDie = v.nav.DieAt(m.Defects[j].Coord())
	v.die = m.Defects[j].Coord()
}

// step moves the defect selection with one of the Navigator methods.
func (v *viewer) step(move func(int) (int, bool)) {
	if v.nav == nil || !v.hasDefect {
		return
	}
	if j, ok := move(v.defect); ok {
		v.selectDefect(j)
	}
}

func (v *viewer) handleKey(k key.Name) bool {
	switch k {
	case key.NameEscape, "Q":
		return true // Signal to close
	case "N":
		v.step(v.nav.NextDefect)
	case "P":
		v.step(v.nav.PrevDefect)
	case key.NameRightArrow:
		v.step(v.nav.NextInDie)
	case key.NameLeftArrow:
		v.step(v.nav.PrevInDie)
	case key.NameDownArrow:
		v.step(v.nav.NextDefectiveDie)
	case key.NameUpArrow:
		v.step(v.nav.PrevDefectiveDie)
	case "D":
		v.settings.ShowDefects = !v.settings.ShowDefects
	case "A":
		v.settings.PreserveAspect = !v.settings.PreserveAspect
		v.wmap = nil
	case "F":
		v.wmap = nil
	case "T":
		v.theme = (v.theme + 1) % renderer.Theme(len(renderer.ThemeNames))
		v.saveTheme()
	}
	return false
}

func (v *viewer) saveTheme() {
	if resolvedConfigPath == "" {
		return
	}
	saved := *cfg
	saved.View.Theme = v.theme.String()
	if err := config.Save(resolvedConfigPath, &saved); err != nil {
		v.logger.Warn("Failed to save theme.", "path", resolvedConfigPath, "err", err)
	}
}

func (v *viewer) layoutStatus(gtx layout.Context) layout.Dimensions {
	text, warnings := v.statusText()

	macro := op.Record(gtx.Ops)
	dims := layout.Inset{Left: unit.Dp(12), Right: unit.Dp(12), Top: unit.Dp(6), Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		var children []layout.FlexChild
		if warnings != "" && v.warn != nil {
			children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				px := gtx.Dp(unit.Dp(18))
				gtx.Constraints.Min = image.Pt(px, px)
				gtx.Constraints.Max = gtx.Constraints.Min
				return v.warn.Layout(gtx, color.NRGBA{R: 230, G: 160, B: 0, A: 255})
			}))
			children = append(children, layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout))
			text = warnings + "   " + text
		}
		children = append(children, layout.Flexed(1, material.Body2(v.th.Theme, text).Layout))
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
	})
	call := macro.Stop()

	paint.FillShape(gtx.Ops, color.NRGBA{R: 250, G: 250, B: 250, A: 255}, clip.Rect{Max: dims.Size}.Op())
	call.Add(gtx.Ops)
	return dims
}

// statusText describes the load state or the current selection. The second
// result lists the missing mandatory fields, if any.
func (v *viewer) statusText() (string, string) {
	v.mu.Lock()
	progress, loadErr := v.progress, v.loadErr
	v.mu.Unlock()

	if loadErr != nil {
		return "Error: " + loadErr.Error(), ""
	}
	m := v.model()
	if m == nil {
		return fmt.Sprintf("Loading %s… %.0f%%", v.path, progress*100), ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Lot %s  Wafer %s  |  %d dies, %d defective, %d defects",
		m.Wafer.LotID, m.Wafer.WaferID, len(m.Dies), m.DefectiveDies(), len(m.Defects))
	if v.hasDie {
		if i, ok := v.nav.DieAt(v.die); ok {
			d := m.Dies[i]
			fmt.Fprintf(&b, "  |  Die #%d (%d,%d): %d defect(s)", d.ID, d.XIndex, d.YIndex, d.DefectCount)
		}
	}
	if v.hasDefect {
		d := m.Defects[v.defect]
		fmt.Fprintf(&b, "  |  Defect %d", d.ID)
		if d.TotalInDie > 0 {
			fmt.Fprintf(&b, " (%d of %d in die)", d.IndexInDie, d.TotalInDie)
		}
		fmt.Fprintf(&b, " size %.2fx%.2f", d.XSize, d.YSize)
	}

	var warnings string
	if len(v.res.Warnings) > 0 {
		warnings = "Missing: " + strings.Join(v.res.Warnings, ", ")
	}
	return b.String(), warnings
}
