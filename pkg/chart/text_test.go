package chart

import (
	"testing"

	"github.com/matzehuels/statgrapher/pkg/chart/canvas"
	"golang.org/x/image/font"
)

// fakeFace measures every rune as perRune * points pixels.
type fakeFace struct {
	points  float64
	perRune float64
}

func (f fakeFace) Points() float64 { return f.points }
func (f fakeFace) Face() font.Face { return nil }
func (f fakeFace) Measure(text string) float64 {
	return float64(len([]rune(text))) * f.perRune * f.points
}

func fakeLadder(perRune float64) []canvas.Face {
	var out []canvas.Face
	for _, p := range []float64{36, 24, 16, 12} {
		out = append(out, fakeFace{points: p, perRune: perRune})
	}
	return out
}

func TestFitText(t *testing.T) {
	const w = 500 // limit 450
	tests := []struct {
		name    string
		text    string
		perRune float64
		want    float64
	}{
		{"fits largest", "short", 0.5, 36},
		{"steps down once", "0123456789abcdefghijklmnopqrstu", 0.5, 24},
		{"exact limit is too wide", "0123456789", 1.25, 24},
		{"nothing fits", "0123456789012345678901234567890123456789", 1, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face, width := FitText(tt.text, fakeLadder(tt.perRune), w)
			if face.Points() != tt.want {
				t.Errorf("FitText() picked %vpt, want %vpt", face.Points(), tt.want)
			}
			if width != face.Measure(tt.text) {
				t.Errorf("width = %v, want measurement at chosen face", width)
			}
		})
	}
}

func TestCaptionPosition(t *testing.T) {
	const w, h = 506, 284
	top, bottom := 0, 0
	for seed := uint64(0); seed < 400; seed++ {
		p := CaptionPosition(NewRand(seed), w, h, 100)
		if p.X != 203 {
			t.Fatalf("x = %v, want centered 203", p.X)
		}
		switch {
		case p.Y >= 0.1*h && p.Y <= 0.3*h:
			top++
		case p.Y >= 0.7*h && p.Y <= 0.9*h:
			bottom++
		default:
			t.Fatalf("seed %d: y = %v outside top or bottom band", seed, p.Y)
		}
	}
	if top == 0 || bottom == 0 {
		t.Errorf("placements top=%d bottom=%d, want both", top, bottom)
	}
}
