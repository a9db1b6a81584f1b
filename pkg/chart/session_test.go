package chart

import (
	"bytes"
	"image/png"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/statgrapher/pkg/chart/canvas"
	"github.com/matzehuels/statgrapher/pkg/errors"
	"github.com/matzehuels/statgrapher/pkg/fonts"
	"github.com/matzehuels/statgrapher/pkg/words"
)

func greekBank(t *testing.T) words.Bank {
	t.Helper()
	b, err := words.FromSlices([]string{"alpha"}, []string{"beta"}, []string{"gamma"}, []string{"delta"})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func officeBank(t *testing.T) words.Bank {
	t.Helper()
	b, err := words.FromSlices(
		[]string{"Quarterly", "Annual", "Weekly"},
		[]string{"coffee", "printer", "meeting", "parking"},
		[]string{"growth", "entropy", "spend"},
		[]string{"(adjusted)", "(estimated)"},
	)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// Construction draws origin, then palette, then caption. These values pin
// that order for the 506x284 default canvas.
func TestSessionGolden(t *testing.T) {
	tests := []struct {
		seed      uint64
		origin    Origin
		axisWidth int
		mode      TextMode
		caption   string
	}{
		{42, Origin{X: 37, Y: 20}, 2, TextRed, "Weekly coffee growth"},
		{14, Origin{X: 137, Y: 160}, 2, TextBlue, "Annual parking spend (adjusted)"},
		{31, Origin{X: 132, Y: 27}, 4, TextBlue, "Weekly coffee entropy (estimated)"},
	}
	for _, tt := range tests {
		s, err := NewSession(NewRand(tt.seed), 506, 284, officeBank(t), fakeLadder(0.5), Options{})
		if err != nil {
			t.Fatalf("seed %d: NewSession() error: %v", tt.seed, err)
		}
		if s.Origin != tt.origin {
			t.Errorf("seed %d: Origin = %+v, want %+v", tt.seed, s.Origin, tt.origin)
		}
		if s.Scheme.AxisWidth != tt.axisWidth || s.Scheme.TextMode != tt.mode {
			t.Errorf("seed %d: axis width %d mode %v, want %d %v", tt.seed, s.Scheme.AxisWidth, s.Scheme.TextMode, tt.axisWidth, tt.mode)
		}
		if s.Caption != tt.caption {
			t.Errorf("seed %d: Caption = %q, want %q", tt.seed, s.Caption, tt.caption)
		}
	}

	s, err := NewSession(NewRand(42), 506, 284, greekBank(t), fakeLadder(0.5), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Caption != "alpha beta gamma" {
		t.Errorf("greek caption = %q, want %q", s.Caption, "alpha beta gamma")
	}
}

func TestSessionIndependentGridSides(t *testing.T) {
	render := func(opts Options) *Session {
		s, err := NewSession(NewRand(42), 506, 284, greekBank(t), fakeLadder(0.5), opts)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Render(canvas.NewRecorder(506, 284)); err != nil {
			t.Fatal(err)
		}
		return s
	}
	shared := render(Options{})
	perSide := render(Options{IndependentGridSides: true})

	if shared.Origin != perSide.Origin || shared.Caption != perSide.Caption {
		t.Error("grid option must not change construction draws")
	}
	if reflect.DeepEqual(shared.Grid, perSide.Grid) {
		t.Error("per-side spacing produced the shared-spacing grid")
	}
}

func TestSessionCaptionVariants(t *testing.T) {
	counts := map[string]int{}
	for seed := uint64(0); seed < 500; seed++ {
		s, err := NewSession(NewRand(seed), 506, 284, greekBank(t), fakeLadder(0.5), Options{})
		if err != nil {
			t.Fatal(err)
		}
		counts[s.Caption]++
	}
	if len(counts) != 2 || counts["alpha beta gamma"] == 0 || counts["alpha beta gamma delta"] == 0 {
		t.Errorf("captions = %v", counts)
	}
	if counts["alpha beta gamma delta"] > counts["alpha beta gamma"] {
		t.Errorf("qualifier drawn more often than not: %v", counts)
	}
}

func TestSessionLayerOrder(t *testing.T) {
	s, err := NewSession(NewRand(7), 506, 284, greekBank(t), fakeLadder(0.5), Options{})
	if err != nil {
		t.Fatal(err)
	}
	rec := canvas.NewRecorder(506, 284)
	var stages []string
	if err := s.RenderWithHook(rec, func(name string) { stages = append(stages, name) }); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !slices.Equal(stages, Stages()) {
		t.Errorf("stages = %v, want %v", stages, Stages())
	}

	var want []canvas.OpKind
	want = append(want, canvas.OpLine, canvas.OpLine)
	for range s.Grid.Lines() {
		want = append(want, canvas.OpLine)
	}
	for range s.Shapes.Parabolas {
		want = append(want, canvas.OpPolyline)
	}
	for range s.Shapes.Bends {
		want = append(want, canvas.OpEllipse)
	}
	for range s.Shapes.Lines {
		want = append(want, canvas.OpLine)
	}
	want = append(want, canvas.OpText)

	ops := rec.Ops()
	got := make([]canvas.OpKind, len(ops))
	for i, op := range ops {
		got[i] = op.Kind
	}
	if !slices.Equal(got, want) {
		t.Fatalf("op kinds = %v, want %v", got, want)
	}

	if s.Shapes.Bends != FixedBends {
		t.Errorf("bends = %d, want %d", s.Shapes.Bends, FixedBends)
	}
	text := ops[len(ops)-1]
	if text.Text != s.Caption || text.Color != s.Scheme.Text {
		t.Errorf("caption op = %+v", text)
	}
	for _, op := range ops[2+s.Grid.Lines() : len(ops)-1] {
		if op.Color != s.Scheme.Curve {
			t.Errorf("curve color %v, want shared %v", op.Color, s.Scheme.Curve)
		}
	}
}

func TestSessionReproducible(t *testing.T) {
	render := func() []canvas.Op {
		s, err := NewSession(NewRand(2024), 506, 284, greekBank(t), fakeLadder(0.5), Options{})
		if err != nil {
			t.Fatal(err)
		}
		rec := canvas.NewRecorder(506, 284)
		if err := s.Render(rec); err != nil {
			t.Fatal(err)
		}
		return rec.Ops()
	}
	if !reflect.DeepEqual(render(), render()) {
		t.Error("identical seeds produced different op lists")
	}
}

func TestSessionRerollCurveColor(t *testing.T) {
	// Across seeds, per-shape colors must differ somewhere.
	for seed := uint64(0); seed < 50; seed++ {
		s, err := NewSession(NewRand(seed), 506, 284, greekBank(t), fakeLadder(0.5), Options{RerollCurveColor: true})
		if err != nil {
			t.Fatal(err)
		}
		rec := canvas.NewRecorder(506, 284)
		if err := s.Render(rec); err != nil {
			t.Fatal(err)
		}
		for _, op := range rec.Ops() {
			if op.Kind == canvas.OpEllipse && op.Color != s.Scheme.Curve {
				return
			}
		}
	}
	t.Error("re-rolled curve colors always matched the session color")
}

func TestSessionRenderErrors(t *testing.T) {
	bank := greekBank(t)
	if _, err := NewSession(NewRand(1), 506, 284, bank, nil, Options{}); !errors.Is(err, errors.ErrCodeFontNotFound) {
		t.Errorf("empty ladder: %v", err)
	}
	if _, err := NewSession(NewRand(1), 10, 10, bank, fakeLadder(1), Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("tiny canvas: %v", err)
	}
	if _, err := NewSession(NewRand(1), 506, 284, words.Bank{}, fakeLadder(1), Options{}); !errors.Is(err, errors.ErrCodeInvalidWordBank) {
		t.Errorf("empty bank: %v", err)
	}

	s, err := NewSession(NewRand(1), 506, 284, bank, fakeLadder(1), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Render(canvas.NewRecorder(100, 100)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("size mismatch: %v", err)
	}
	if err := s.Render(canvas.NewRecorder(506, 284)); err != nil {
		t.Fatal(err)
	}
	if err := s.Render(canvas.NewRecorder(506, 284)); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("second render: %v", err)
	}
}

func TestSessionRasterExport(t *testing.T) {
	f, err := fonts.Default()
	if err != nil {
		t.Fatal(err)
	}
	ladder, err := f.NewLadder(fonts.DefaultSizes)
	if err != nil {
		t.Fatal(err)
	}

	for _, size := range [][2]int{{506, 284}, {320, 480}} {
		s, err := NewSession(NewRand(42), size[0], size[1], greekBank(t), ladder.Faces(), Options{})
		if err != nil {
			t.Fatal(err)
		}
		c := s.NewCanvas()
		if err := s.Render(c); err != nil {
			t.Fatal(err)
		}
		for _, face := range ladder {
			if face.Points() <= s.Face.Points() {
				break
			}
			if face.Measure(s.Caption) < 0.9*float64(size[0]) {
				t.Errorf("caption fits at %vpt but %vpt was chosen", face.Points(), s.Face.Points())
			}
		}

		path := filepath.Join(t.TempDir(), "random_graph.png")
		if err := c.SavePNG(path); err != nil {
			t.Fatalf("SavePNG() error: %v", err)
		}
		data, err := c.PNG()
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != size[0] || b.Dy() != size[1] {
			t.Errorf("exported %dx%d, want %dx%d", b.Dx(), b.Dy(), size[0], size[1])
		}
	}
}
