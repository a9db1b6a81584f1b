package chart

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// TextMode selects the hue bias of the caption color.
type TextMode int

// Caption color modes, drawn uniformly.
const (
	TextRed TextMode = iota
	TextGreen
	TextBlue
	TextNeutral
)

func (m TextMode) String() string {
	switch m {
	case TextRed:
		return "red"
	case TextGreen:
		return "green"
	case TextBlue:
		return "blue"
	default:
		return "neutral"
	}
}

// ColorScheme is the palette of one render session. It is a plain value and
// never changes after [NewPalette] returns it.
type ColorScheme struct {
	Background color.RGBA
	Axis       color.RGBA
	Grid       color.RGBA
	Text       color.RGBA
	Curve      color.RGBA
	TextMode   TextMode
	AxisWidth  int
}

// NewPalette draws a color scheme from r: a near-black background, a
// green-leaning axis, dim gray gridlines, a bright caption and light curves.
//
// Draw order is fixed (background, axis, axis width, grid, text, curve) so a
// seed reproduces the same scheme.
func NewPalette(r *Rand) ColorScheme {
	var cs ColorScheme
	cs.Background = BackgroundColor(r)
	cs.Axis = AxisColor(r)
	cs.AxisWidth = AxisWidth(r)
	cs.Grid = GridColor(r)
	cs.Text, cs.TextMode = TextColor(r)
	cs.Curve = CurveColor(r)
	return cs
}

// BackgroundColor is a gray with brightness in [0, 0.1].
func BackgroundColor(r *Rand) color.RGBA {
	b := r.Float(0.0, 0.1)
	return rgb(b, b, b)
}

// AxisColor is biased green: R,B in [0.4, 0.6], G in [0.6, 0.9].
func AxisColor(r *Rand) color.RGBA {
	red := r.Float(0.4, 0.6)
	green := r.Float(0.6, 0.9)
	blue := r.Float(0.4, 0.6)
	return rgb(red, green, blue)
}

// AxisWidth is an integer stroke width in [2, 4].
func AxisWidth(r *Rand) int {
	return r.IntRange(2, 4)
}

// GridColor is a dim neutral with every channel in [0.2, 0.4].
func GridColor(r *Rand) color.RGBA {
	red := r.Float(0.2, 0.4)
	green := r.Float(0.2, 0.4)
	blue := r.Float(0.2, 0.4)
	return rgb(red, green, blue)
}

// TextColor picks one of four equally likely modes: a single saturated
// primary in [0.9, 1.0] with the other channels at zero, or a bright neutral.
func TextColor(r *Rand) (color.RGBA, TextMode) {
	var red, green, blue float64
	mode := TextMode(r.IntRange(0, 3))
	switch mode {
	case TextRed:
		red = r.Float(0.9, 1.0)
	case TextGreen:
		green = r.Float(0.9, 1.0)
	case TextBlue:
		blue = r.Float(0.9, 1.0)
	default:
		b := r.Float(0.9, 1.0)
		red, green, blue = b, b, b
	}
	return rgb(red, green, blue), mode
}

// CurveColor is a light gray-blue with every channel in [0.6, 0.9].
func CurveColor(r *Rand) color.RGBA {
	red := r.Float(0.6, 0.9)
	green := r.Float(0.6, 0.9)
	blue := r.Float(0.6, 0.9)
	return rgb(red, green, blue)
}

// ChannelByte converts a [0,1] channel to a byte by truncation.
func ChannelByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v * 255)
}

func rgb(r, g, b float64) color.RGBA {
	return color.RGBA{R: ChannelByte(r), G: ChannelByte(g), B: ChannelByte(b), A: 255}
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

// LogValues flattens the scheme into key/value pairs for structured logging.
func (cs ColorScheme) LogValues() []any {
	return []any{
		"background", Hex(cs.Background),
		"axis", Hex(cs.Axis),
		"axis_width", cs.AxisWidth,
		"grid", Hex(cs.Grid),
		"text", Hex(cs.Text),
		"text_mode", cs.TextMode.String(),
		"curve", Hex(cs.Curve),
	}
}
