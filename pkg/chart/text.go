package chart

import (
	"image/color"

	"github.com/matzehuels/statgrapher/pkg/chart/canvas"
)

// maxTextWidth is the share of canvas width a caption may occupy.
const maxTextWidth = 0.9

// FitText returns the first face of ladder (largest first) whose rendering
// of text is narrower than 90% of width, falling back to the last face.
// It also returns the measured width at the chosen face.
func FitText(text string, ladder []canvas.Face, width int) (canvas.Face, float64) {
	limit := maxTextWidth * float64(width)
	var face canvas.Face
	var measured float64
	for _, f := range ladder {
		face, measured = f, f.Measure(text)
		if measured < limit {
			break
		}
	}
	return face, measured
}

// CaptionPosition centers a caption of the given width horizontally and
// places it 10-30% of the height from the top or, half the time, the bottom.
func CaptionPosition(r *Rand, w, h int, textWidth float64) canvas.Point {
	x := 0.5 * (float64(w) - textWidth)
	y := float64(h) * r.Float(0.1, 0.3)
	if r.Coin() {
		y = float64(h) - y
	}
	return canvas.Point{X: x, Y: y}
}

// DrawCaption fits and draws text in color c.
func DrawCaption(s canvas.Surface, r *Rand, text string, ladder []canvas.Face, c color.RGBA) canvas.Face {
	w, h := s.Size()
	face, width := FitText(text, ladder, w)
	s.DrawText(text, CaptionPosition(r, w, h, width), face, c)
	return face
}
