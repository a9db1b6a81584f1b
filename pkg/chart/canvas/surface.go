package canvas

import (
	"image/color"
	"slices"

	"golang.org/x/image/font"
)

// Point is a position in canvas pixel coordinates (origin top-left, y down).
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned box given by two corners.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// Face is a measurable, renderable font at a fixed point size.
type Face interface {
	// Points is the nominal size of the face.
	Points() float64
	// Measure returns the advance width of text in pixels.
	Measure(text string) float64
	// Face returns the underlying face used for rasterizing. Faces that are
	// only measured may return nil.
	Face() font.Face
}

// Surface is the drawing capability shared by all render stages.
type Surface interface {
	Size() (w, h int)
	StrokeLine(a, b Point, c color.RGBA, width float64)
	StrokePolyline(pts []Point, c color.RGBA, width float64)
	StrokeEllipse(bounds Rect, c color.RGBA, width float64)
	DrawText(text string, at Point, face Face, c color.RGBA)
}

// OpKind identifies a recorded drawing operation.
type OpKind int

const (
	OpLine OpKind = iota
	OpPolyline
	OpEllipse
	OpText
)

func (k OpKind) String() string {
	switch k {
	case OpLine:
		return "line"
	case OpPolyline:
		return "polyline"
	case OpEllipse:
		return "ellipse"
	case OpText:
		return "text"
	}
	return "unknown"
}

// Op is one recorded drawing call. Fields not used by the kind are zero.
type Op struct {
	Kind     OpKind
	Points   []Point // line endpoints, polyline vertices, text position
	Bounds   Rect    // ellipse bounding box
	Color    color.RGBA
	Width    float64
	Text     string
	FontSize float64
}

// Recorder is a Surface that only records operations.
type Recorder struct {
	w, h int
	ops  []Op
}

// NewRecorder returns an empty recorder for a w x h surface.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{w: w, h: h}
}

// Size returns the surface dimensions in pixels.
func (r *Recorder) Size() (int, int) { return r.w, r.h }

// StrokeLine records a line segment.
func (r *Recorder) StrokeLine(a, b Point, c color.RGBA, width float64) {
	r.ops = append(r.ops, Op{Kind: OpLine, Points: []Point{a, b}, Color: c, Width: width})
}

// StrokePolyline records an open path.
func (r *Recorder) StrokePolyline(pts []Point, c color.RGBA, width float64) {
	r.ops = append(r.ops, Op{Kind: OpPolyline, Points: slices.Clone(pts), Color: c, Width: width})
}

// StrokeEllipse records an ellipse outline.
func (r *Recorder) StrokeEllipse(bounds Rect, c color.RGBA, width float64) {
	r.ops = append(r.ops, Op{Kind: OpEllipse, Bounds: bounds, Color: c, Width: width})
}

// DrawText records a caption draw.
func (r *Recorder) DrawText(text string, at Point, face Face, c color.RGBA) {
	r.ops = append(r.ops, Op{Kind: OpText, Points: []Point{at}, Color: c, Text: text, FontSize: face.Points()})
}

// Ops returns a copy of the recorded operations in call order.
func (r *Recorder) Ops() []Op {
	return slices.Clone(r.ops)
}

// Count returns how many operations of kind k were recorded.
func (r *Recorder) Count(k OpKind) int {
	n := 0
	for _, op := range r.ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

var _ Surface = (*Recorder)(nil)
