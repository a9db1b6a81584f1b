package chart

import (
	"image/color"

	"github.com/matzehuels/statgrapher/pkg/chart/canvas"
)

// Parabola sampling: x runs from -parabolaMargin in parabolaStep increments
// while x < w+parabolaMargin.
const (
	parabolaMargin = 20
	parabolaStep   = 5
)

// FixedBends is the number of bends drawn per render.
const FixedBends = 2

// ShapeCounts is how many of each curve a render draws.
type ShapeCounts struct {
	Parabolas int
	Bends     int
	Lines     int
}

// Total returns the number of curves.
func (s ShapeCounts) Total() int { return s.Parabolas + s.Bends + s.Lines }

// PlanShapes draws the per-render curve counts: 0-2 parabolas, a fixed
// number of bends and 0-3 lines. A render with no curves at all gets 2-4
// lines instead; with bends fixed at [FixedBends] that never happens unless
// randomBends restores the historical 0-2 bend draw.
func PlanShapes(r *Rand, randomBends bool) ShapeCounts {
	var s ShapeCounts
	s.Parabolas = r.IntRange(0, 2)
	if randomBends {
		s.Bends = r.IntRange(0, 2)
	} else {
		s.Bends = FixedBends
	}
	s.Lines = r.IntRange(0, 3)
	if s.Total() == 0 {
		s.Lines = r.IntRange(2, 4)
	}
	return s
}

// LineSegment computes a random line through the middle of the canvas,
// extended to the left and right edges.
func LineSegment(r *Rand, w, h int) (canvas.Point, canvas.Point) {
	fw, fh := float64(w), float64(h)
	cx := r.Float(0.3*fw, 0.7*fw)
	cy := r.Float(0.3*fh, 0.7*fh)
	slope := r.Float(0.3, 1.5)
	if r.Coin() {
		slope = -slope
	}
	return canvas.Point{X: 0, Y: cy + slope*(0-cx)},
		canvas.Point{X: fw, Y: cy + slope*(fw-cx)}
}

// DrawLine strokes one random line.
func DrawLine(s canvas.Surface, r *Rand, c color.RGBA) {
	w, h := s.Size()
	a, b := LineSegment(r, w, h)
	s.StrokeLine(a, b, c, 1)
}

// Parabola is y = A(x-H)^2 + K.
type Parabola struct {
	A, H, K float64
}

// RandomParabola draws a parabola with its vertex in the middle band of the
// canvas. |A| lies in [0.1/h, 50/h] so curvature does not depend on resolution.
func RandomParabola(r *Rand, w, h int) Parabola {
	fw, fh := float64(w), float64(h)
	sign := 1.0
	if r.Coin() {
		sign = -1
	}
	a := r.Float(0.1/fh, 50.0/fh) * sign
	hv := r.Float(0.2*fw, 0.8*fw)
	k := r.Float(0.1*fh, 0.9*fh)
	return Parabola{A: a, H: hv, K: k}
}

// Y evaluates the parabola at x.
func (p Parabola) Y(x float64) float64 {
	d := x - p.H
	return p.A*d*d + p.K
}

// Samples returns the polyline approximation for a canvas of width w.
func (p Parabola) Samples(w int) []canvas.Point {
	end := w + parabolaMargin
	pts := make([]canvas.Point, 0, (end+parabolaMargin)/parabolaStep+1)
	for x := -parabolaMargin; x < end; x += parabolaStep {
		fx := float64(x)
		pts = append(pts, canvas.Point{X: fx, Y: p.Y(fx)})
	}
	return pts
}

// DrawParabola strokes one random parabola.
func DrawParabola(s canvas.Surface, r *Rand, c color.RGBA) {
	w, h := s.Size()
	s.StrokePolyline(RandomParabola(r, w, h).Samples(w), c, 1)
}

// BendBounds builds the bounding box of a bend ellipse: a w x h box scaled
// by (xs, ys) whose near edges touch focus. The edge chosen on each axis is
// the one facing the canvas center, so the ellipse swings across the canvas.
func BendBounds(w, h int, focus canvas.Point, xs, ys float64) canvas.Rect {
	fw, fh := float64(w), float64(h)
	sw, sh := fw*xs, fh*ys

	var rect canvas.Rect
	if focus.X < 0.5*fw {
		rect.X0, rect.X1 = focus.X, focus.X+sw
	} else {
		rect.X0, rect.X1 = focus.X-sw, focus.X
	}
	if focus.Y < 0.5*fh {
		rect.Y0, rect.Y1 = focus.Y, focus.Y+sh
	} else {
		rect.Y0, rect.Y1 = focus.Y-sh, focus.Y
	}
	return rect
}

// RandomBend draws a focus in the inner 80% of the canvas and scale factors
// in [2, 3].
func RandomBend(r *Rand, w, h int) canvas.Rect {
	fw, fh := float64(w), float64(h)
	focus := canvas.Point{
		X: r.Float(0.1*fw, 0.9*fw),
		Y: r.Float(0.1*fh, 0.9*fh),
	}
	xs := r.Float(2.0, 3.0)
	ys := r.Float(2.0, 3.0)
	return BendBounds(w, h, focus, xs, ys)
}

// DrawBend strokes the outline of one oversized ellipse. Only an arc of it
// lands on the canvas.
func DrawBend(s canvas.Surface, r *Rand, c color.RGBA) {
	w, h := s.Size()
	s.StrokeEllipse(RandomBend(r, w, h), c, 1)
}
