package chart

import (
	"image/color"

	"github.com/matzehuels/statgrapher/pkg/chart/canvas"
	"github.com/matzehuels/statgrapher/pkg/errors"
	"github.com/matzehuels/statgrapher/pkg/words"
)

// Stage names, in render order.
const (
	StageAxes      = "axes"
	StageGrid      = "gridlines"
	StageParabolas = "parabolas"
	StageBends     = "bends"
	StageLines     = "lines"
	StageCaption   = "caption"
)

// Options adjusts session behavior. The zero value is the standard render.
type Options struct {
	// RandomBends draws the bend count from [0, 2] instead of fixing it.
	RandomBends bool

	// RerollCurveColor draws a fresh curve color for every shape instead of
	// sharing one per session.
	RerollCurveColor bool

	// IndependentGridSides draws gridline spacing separately for each side
	// of the origin instead of once per axis.
	IndependentGridSides bool
}

// Session is a single render. Construct it with [NewSession], then call
// [Session.Render] once.
type Session struct {
	Width, Height int
	Origin        Origin
	Scheme        ColorScheme
	Caption       string

	// Populated by Render.
	Grid   GridPlan
	Shapes ShapeCounts
	Face   canvas.Face

	rng      *Rand
	ladder   []canvas.Face
	opts     Options
	rendered bool
}

// NewSession picks the origin, palette and caption for a w x h render.
func NewSession(r *Rand, w, h int, bank words.Bank, ladder []canvas.Face, opts Options) (*Session, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeInternal, "session needs a randomness source")
	}
	if err := errors.ValidateDimensions(w, h); err != nil {
		return nil, err
	}
	if len(ladder) == 0 {
		return nil, errors.New(errors.ErrCodeFontNotFound, "font ladder is empty")
	}

	s := &Session{
		Width:  w,
		Height: h,
		rng:    r,
		ladder: ladder,
		opts:   opts,
	}
	s.Origin = PlanOrigin(r, w, h)
	s.Scheme = NewPalette(r)

	caption, err := words.Compose(r, bank)
	if err != nil {
		return nil, err
	}
	s.Caption = caption
	return s, nil
}

// NewCanvas returns a blank canvas in the session's size and background.
func (s *Session) NewCanvas() *canvas.Canvas {
	return canvas.New(s.Width, s.Height, s.Scheme.Background)
}

type stage struct {
	name string
	draw func(canvas.Surface)
}

// Stages lists the stage names in the order Render runs them.
func Stages() []string {
	return []string{StageAxes, StageGrid, StageParabolas, StageBends, StageLines, StageCaption}
}

// Render runs the stage pipeline on dst. A session renders once.
func (s *Session) Render(dst canvas.Surface) error {
	return s.RenderWithHook(dst, nil)
}

// RenderWithHook is Render with a callback after each completed stage.
func (s *Session) RenderWithHook(dst canvas.Surface, after func(stage string)) error {
	if s.rendered {
		return errors.New(errors.ErrCodeInternal, "session already rendered")
	}
	if w, h := dst.Size(); w != s.Width || h != s.Height {
		return errors.New(errors.ErrCodeInvalidInput, "surface is %dx%d, session is %dx%d", w, h, s.Width, s.Height)
	}
	s.rendered = true

	stages := []stage{
		{StageAxes, func(c canvas.Surface) { DrawAxes(c, s.Origin, s.Scheme) }},
		{StageGrid, func(c canvas.Surface) {
			if s.opts.IndependentGridSides {
				s.Grid = PlanGridPerSide(s.rng, s.Width, s.Height, s.Origin)
			} else {
				s.Grid = PlanGrid(s.rng, s.Width, s.Height, s.Origin)
			}
			DrawGrid(c, s.Grid, s.Scheme)
			s.Shapes = PlanShapes(s.rng, s.opts.RandomBends)
		}},
		{StageParabolas, func(c canvas.Surface) { s.repeat(c, s.Shapes.Parabolas, DrawParabola) }},
		{StageBends, func(c canvas.Surface) { s.repeat(c, s.Shapes.Bends, DrawBend) }},
		{StageLines, func(c canvas.Surface) { s.repeat(c, s.Shapes.Lines, DrawLine) }},
		{StageCaption, func(c canvas.Surface) {
			s.Face = DrawCaption(c, s.rng, s.Caption, s.ladder, s.Scheme.Text)
		}},
	}
	for _, st := range stages {
		st.draw(dst)
		if after != nil {
			after(st.name)
		}
	}
	return nil
}

func (s *Session) repeat(c canvas.Surface, n int, draw func(canvas.Surface, *Rand, color.RGBA)) {
	for range n {
		col := s.Scheme.Curve
		if s.opts.RerollCurveColor {
			col = CurveColor(s.rng)
		}
		draw(c, s.rng, col)
	}
}
