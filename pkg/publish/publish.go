// Package publish hands finished charts to a destination.
//
// A [Post] is the unit of publication: a PNG and its caption, already
// reduced to what the historical destination accepted (a caption of at most
// [CaptionLimit] characters and an image no larger than [MaxDimension] on
// either side). Sinks decide where posts go:
//
//   - [FileSink] writes <id>.png and <id>.txt into a directory
//   - [MongoSink] archives posts in a MongoDB collection
//   - [LogSink] only logs, for dry runs
//
// [Send] wraps a sink with retries and observability hooks.
package publish

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/statgrapher/pkg/cache"
	"github.com/matzehuels/statgrapher/pkg/errors"
	"github.com/matzehuels/statgrapher/pkg/observability"
)

const (
	// CaptionLimit is the maximum caption length in characters.
	CaptionLimit = 139

	// MaxDimension is the largest accepted image side in pixels.
	MaxDimension = 506
)

// Post is a chart ready for publication.
type Post struct {
	ID        string
	Seed      uint64
	Caption   string
	PNG       []byte
	Width     int
	Height    int
	CreatedAt time.Time
}

// NewPost prepares a rendered chart for publication. The caption is
// truncated to CaptionLimit characters and the image is downscaled, keeping
// its aspect ratio, when either side exceeds MaxDimension.
func NewPost(id string, seed uint64, caption string, data []byte) (*Post, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode chart")
	}

	p := &Post{
		ID:        id,
		Seed:      seed,
		Caption:   TruncateCaption(caption, CaptionLimit),
		PNG:       data,
		Width:     cfg.Width,
		Height:    cfg.Height,
		CreatedAt: time.Now().UTC(),
	}
	if cfg.Width <= MaxDimension && cfg.Height <= MaxDimension {
		return p, nil
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode chart")
	}
	fitted := FitImage(img, MaxDimension)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "encode fitted chart")
	}
	p.PNG = buf.Bytes()
	p.Width = fitted.Bounds().Dx()
	p.Height = fitted.Bounds().Dy()
	return p, nil
}

// TruncateCaption cuts s to at most limit characters (runes).
func TruncateCaption(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// FitImage scales img down so neither side exceeds limit. Images that already
// fit are returned unchanged.
func FitImage(img image.Image, limit int) image.Image {
	b := img.Bounds()
	if b.Dx() <= limit && b.Dy() <= limit {
		return img
	}
	return imaging.Fit(img, limit, limit, imaging.Lanczos)
}

// Sink is a publication destination.
type Sink interface {
	// Name identifies the sink in logs and hooks.
	Name() string

	// Publish delivers one post. Transient failures should be wrapped with
	// cache.Retryable so Send retries them.
	Publish(ctx context.Context, p *Post) error

	// Close releases sink resources.
	Close() error
}

// Send publishes p to sink, retrying transient failures with backoff.
func Send(ctx context.Context, sink Sink, p *Post) error {
	start := time.Now()
	err := cache.RetryWithBackoff(ctx, func() error {
		return sink.Publish(ctx, p)
	})
	observability.Publish().OnPublish(ctx, sink.Name(), len(p.PNG), time.Since(start), err)
	if err != nil {
		if errors.GetCode(err) != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodePublishFailed, err, "publish to %s", sink.Name())
	}
	return nil
}
