package chart

import (
	"github.com/matzehuels/statgrapher/pkg/chart/canvas"
)

// GridPlan holds gridline offsets on each side of the origin, nearest first.
type GridPlan struct {
	Left, Right []float64 // x of vertical gridlines
	Up, Down    []float64 // y of horizontal gridlines
}

// PlanGrid draws the gridline sequences for a w x h canvas.
//
// Each axis gets one growth factor in [1, 1.25] and one initial spacing in
// [h/40, h/25], shared by both sides of the origin. Spacing is taken from the
// canvas height for both axes. Starting one spacing away from the origin,
// each run multiplies the spacing by the growth factor after every line, so
// lines thin out away from the origin.
func PlanGrid(r *Rand, w, h int, o Origin) GridPlan {
	return planGrid(r, w, h, o, false)
}

// PlanGridPerSide is PlanGrid with a separate growth factor and initial
// spacing for each of the four sides, drawn left, right, up, down.
func PlanGridPerSide(r *Rand, w, h int, o Origin) GridPlan {
	return planGrid(r, w, h, o, true)
}

func planGrid(r *Rand, w, h int, o Origin, perSide bool) GridPlan {
	var g GridPlan
	g.Left, g.Right = logRuns(r, float64(o.X), float64(w), float64(h), perSide)
	g.Up, g.Down = logRuns(r, float64(o.Y), float64(h), float64(h), perSide)
	return g
}

func logRuns(r *Rand, origin, extent, h float64, perSide bool) (before, after []float64) {
	growth := r.Float(1.0, 1.25)
	initial := r.Float(h/40.0, h/25.0)

	dist := initial
	for x := origin - dist; x > 0; x -= dist {
		before = append(before, x)
		dist *= growth
	}

	if perSide {
		growth = r.Float(1.0, 1.25)
		initial = r.Float(h/40.0, h/25.0)
	}
	dist = initial
	for x := origin + dist; x < extent; x += dist {
		after = append(after, x)
		dist *= growth
	}
	return before, after
}

// DrawAxes strokes the horizontal and vertical axis through o.
func DrawAxes(s canvas.Surface, o Origin, cs ColorScheme) {
	w, h := s.Size()
	y, x := float64(o.Y), float64(o.X)
	width := float64(cs.AxisWidth)
	s.StrokeLine(canvas.Point{X: 0, Y: y}, canvas.Point{X: float64(w), Y: y}, cs.Axis, width)
	s.StrokeLine(canvas.Point{X: x, Y: 0}, canvas.Point{X: x, Y: float64(h)}, cs.Axis, width)
}

// DrawGrid strokes the planned gridlines full-span in the grid color:
// verticals left then right, then horizontals above then below.
func DrawGrid(s canvas.Surface, g GridPlan, cs ColorScheme) {
	w, h := s.Size()
	fw, fh := float64(w), float64(h)
	for _, run := range [][]float64{g.Left, g.Right} {
		for _, x := range run {
			s.StrokeLine(canvas.Point{X: x, Y: 0}, canvas.Point{X: x, Y: fh}, cs.Grid, 1)
		}
	}
	for _, run := range [][]float64{g.Up, g.Down} {
		for _, y := range run {
			s.StrokeLine(canvas.Point{X: 0, Y: y}, canvas.Point{X: fw, Y: y}, cs.Grid, 1)
		}
	}
}

// Lines returns the total number of gridlines in the plan.
func (g GridPlan) Lines() int {
	return len(g.Left) + len(g.Right) + len(g.Up) + len(g.Down)
}
