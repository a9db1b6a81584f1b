// Package fonts resolves the caption font and builds the font ladder.
//
// The Go Regular face from golang.org/x/image is embedded as the default
// font so the binary renders without external files. A configured font
// (a path, or a file name looked up in the system font directories) is used
// instead when given; if it cannot be resolved, loading fails rather than
// silently switching back to the embedded face.
package fonts

import (
	"cmp"
	"os"
	"slices"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/statgrapher/pkg/chart/canvas"
	"github.com/matzehuels/statgrapher/pkg/errors"
)

// DefaultSizes is the reference ladder in points, largest first.
var DefaultSizes = []float64{36, 24, 16, 12}

// DefaultName identifies the embedded font in logs and cache keys.
const DefaultName = "goregular"

// Font is a parsed TrueType font. It is immutable and safe to share between
// sessions; faces created from it are not.
type Font struct {
	Name string
	ttf  *truetype.Font
}

// Default returns the embedded Go Regular font.
func Default() (*Font, error) {
	return Parse(DefaultName, goregular.TTF)
}

// Parse parses TrueType data.
func Parse(name string, data []byte) (*Font, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "parse font %s", name)
	}
	return &Font{Name: name, ttf: f}, nil
}

// Resolve maps a font reference to a file path. An existing path is returned
// as is; anything else is treated as a file name and searched for in the
// system font directories.
func Resolve(ref string) (string, error) {
	if ref == "" {
		return "", errors.New(errors.ErrCodeFontNotFound, "font reference is empty")
	}
	if st, err := os.Stat(ref); err == nil && !st.IsDir() {
		return ref, nil
	}
	path, err := findfont.Find(ref)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFontNotFound, err, "font %q not found", ref)
	}
	return path, nil
}

// Load resolves ref and parses the font it names. An empty ref selects the
// embedded default.
func Load(ref string) (*Font, error) {
	if ref == "" {
		return Default()
	}
	path, err := Resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "read font %s", path)
	}
	return Parse(ref, data)
}

// Face is a font at one point size. It implements [canvas.Face].
type Face struct {
	points float64
	face   font.Face
}

// Points returns the face size.
func (f *Face) Points() float64 { return f.points }

// Face returns the rasterizing face.
func (f *Face) Face() font.Face { return f.face }

// Measure returns the advance width of text in pixels.
func (f *Face) Measure(text string) float64 {
	adv := font.MeasureString(f.face, text)
	return float64(adv) / 64
}

// Ladder is a sequence of faces ordered from largest to smallest.
type Ladder []*Face

// NewLadder creates one face per size at 72 DPI, so points equal pixels.
// Sizes are sorted largest first regardless of input order.
func (f *Font) NewLadder(sizes []float64) (Ladder, error) {
	if err := errors.ValidateFontSizes(sizes); err != nil {
		return nil, err
	}
	sorted := slices.Clone(sizes)
	slices.SortFunc(sorted, func(a, b float64) int { return cmp.Compare(b, a) })
	sorted = slices.Compact(sorted)

	ladder := make(Ladder, 0, len(sorted))
	for _, size := range sorted {
		ladder = append(ladder, &Face{
			points: size,
			face: truetype.NewFace(f.ttf, &truetype.Options{
				Size:    size,
				DPI:     72,
				Hinting: font.HintingFull,
			}),
		})
	}
	return ladder, nil
}

// Faces converts the ladder to the canvas face interface.
func (l Ladder) Faces() []canvas.Face {
	out := make([]canvas.Face, len(l))
	for i, f := range l {
		out[i] = f
	}
	return out
}

// Sizes lists the ladder's point sizes in order.
func (l Ladder) Sizes() []float64 {
	out := make([]float64, len(l))
	for i, f := range l {
		out[i] = f.points
	}
	return out
}
