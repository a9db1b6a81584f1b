// Package pipeline runs chart renders for the CLI and the preview server.
//
// This package wires the core synthesizer to its collaborators: it loads the
// word bank and font ladder, runs a [chart.Session] on a fresh canvas,
// encodes the PNG and caches the result. Both entry points go through
// [Runner.Execute] so they produce identical images for identical options.
//
// # Stages
//
//  1. Load: word bank and font ladder (fail fast on either)
//  2. Render: session construction and the fixed draw pipeline
//  3. Encode: lossless PNG of the finished raster
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    WordsPath: "words.txt",
//	    Seed:      42,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = result.Save("random_graph.png")
package pipeline

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/statgrapher/pkg/chart"
	"github.com/matzehuels/statgrapher/pkg/chart/canvas"
	"github.com/matzehuels/statgrapher/pkg/errors"
	"github.com/matzehuels/statgrapher/pkg/fonts"
	"github.com/matzehuels/statgrapher/pkg/words"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels. Together with
	// DefaultHeight it stays inside the historical 506x506 upload limit.
	DefaultWidth = 506

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 284

	// DefaultOutput is the default file name for exported charts.
	DefaultOutput = "random_graph.png"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one render.
// This struct supports JSON serialization for server requests.
type Options struct {
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Seed   uint64 `json:"seed,omitempty"` // 0 picks a random seed

	WordsPath string    `json:"-"`
	Font      string    `json:"font,omitempty"` // path or system font file name; empty = embedded
	FontSizes []float64 `json:"font_sizes,omitempty"`

	RandomBends      bool `json:"random_bends,omitempty"`
	RerollCurveColor bool `json:"reroll_curve_color,omitempty"`
	GridPerSide      bool `json:"grid_per_side,omitempty"`
	Refresh          bool `json:"refresh,omitempty"` // bypass cache reads

	// Runtime options (not serialized)
	Words  *words.Bank `json:"-"` // preloaded bank; overrides WordsPath
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool

	// randomSeed is set when SetDefaults picked the seed.
	randomSeed bool
}

// Result contains the outputs of a render.
type Result struct {
	// ID uniquely identifies this render for logs and publish sinks.
	ID string `json:"id"`

	Seed    uint64 `json:"seed"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Caption string `json:"caption"`

	// PNG is the encoded raster.
	PNG []byte `json:"png"`

	Scheme   chart.ColorScheme `json:"scheme"`
	Shapes   chart.ShapeCounts `json:"shapes"`
	FontSize float64           `json:"font_size"`

	Stats    Stats `json:"-"`
	CacheHit bool  `json:"-"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LoadTime   time.Duration
	RenderTime time.Duration
	EncodeTime time.Duration
	Stages     map[string]time.Duration
}

// Save writes the PNG to path, replacing any existing file atomically.
func (r *Result) Save(path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	return canvas.WriteFileAtomic(path, r.PNG)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Words == nil && o.WordsPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "a word file is required")
	}
	o.SetDefaults()
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if err := errors.ValidateFontSizes(o.FontSizes); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero fields with defaults. A zero seed is replaced by a
// random one so unseeded runs differ; the chosen seed is reported in the result.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64() | 1
		o.randomSeed = true
	}
	if len(o.FontSizes) == 0 {
		o.FontSizes = fonts.DefaultSizes
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Seeded reports whether the caller chose the seed. Only seeded renders can
// be requested again, so only they are cached.
func (o *Options) Seeded() bool {
	return !o.randomSeed
}

// FontName returns the font reference used in cache keys.
func (o *Options) FontName() string {
	if o.Font == "" {
		return fonts.DefaultName
	}
	return o.Font
}

// SessionOptions returns the chart options selected by o.
func (o *Options) SessionOptions() chart.Options {
	return chart.Options{
		RandomBends:          o.RandomBends,
		RerollCurveColor:     o.RerollCurveColor,
		IndependentGridSides: o.GridPerSide,
	}
}
