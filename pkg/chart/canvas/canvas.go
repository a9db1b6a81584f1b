package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/matzehuels/statgrapher/pkg/errors"
)

// Canvas is an RGB raster that records and rasterizes every operation.
// It is owned by a single render session and is not safe for concurrent use.
type Canvas struct {
	Recorder
	img *image.RGBA
	dc  *gg.Context
}

// New returns a w x h canvas filled with bg.
func New(w, h int, bg color.RGBA) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(img)
	bg.A = 255
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{
		Recorder: Recorder{w: w, h: h},
		img:      img,
		dc:       dc,
	}
}

// StrokeLine records and strokes the segment a-b.
func (c *Canvas) StrokeLine(a, b Point, col color.RGBA, width float64) {
	c.Recorder.StrokeLine(a, b, col, width)
	c.stroke(col, width, func() {
		c.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	})
}

// StrokePolyline records and strokes the open path through pts. Fewer than
// two points are recorded but draw nothing.
func (c *Canvas) StrokePolyline(pts []Point, col color.RGBA, width float64) {
	c.Recorder.StrokePolyline(pts, col, width)
	if len(pts) < 2 {
		return
	}
	c.stroke(col, width, func() {
		c.dc.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			c.dc.LineTo(p.X, p.Y)
		}
	})
}

// StrokeEllipse records and strokes the ellipse inscribed in bounds.
func (c *Canvas) StrokeEllipse(bounds Rect, col color.RGBA, width float64) {
	c.Recorder.StrokeEllipse(bounds, col, width)
	ctr := bounds.Center()
	c.stroke(col, width, func() {
		c.dc.DrawEllipse(ctr.X, ctr.Y, bounds.Width()/2, bounds.Height()/2)
	})
}

// DrawText draws text with the top of its line box at at.Y.
func (c *Canvas) DrawText(text string, at Point, face Face, col color.RGBA) {
	c.Recorder.DrawText(text, at, face, col)
	ff := face.Face()
	if ff == nil {
		return
	}
	c.dc.SetFontFace(ff)
	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(text, at.X, at.Y, 0, 1)
}

func (c *Canvas) stroke(col color.RGBA, width float64, path func()) {
	if width <= 0 {
		width = 1
	}
	c.dc.NewSubPath()
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	path()
	c.dc.Stroke()
}

// Image returns the raster. The returned image aliases the canvas.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// EncodePNG writes the raster to w as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

// PNG returns the encoded raster.
func (c *Canvas) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "encode png")
	}
	return buf.Bytes(), nil
}

// SavePNG encodes the raster to path, replacing any existing file atomically.
func (c *Canvas) SavePNG(path string) error {
	data, err := c.PNG()
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file in the destination directory and
// renames it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrap(errors.ErrCodeExportFailed, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(errors.ErrCodeExportFailed, err, "close %s", path)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return errors.Wrap(errors.ErrCodeExportFailed, err, "chmod %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Wrap(errors.ErrCodeExportFailed, err, "rename into %s", path)
	}
	return nil
}

var _ Surface = (*Canvas)(nil)
