package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/statgrapher/pkg/chart"
	"github.com/matzehuels/statgrapher/pkg/fonts"
	"github.com/matzehuels/statgrapher/pkg/observability"
	"github.com/matzehuels/statgrapher/pkg/words"
)

// Render draws one chart from already loaded collaborators. It does not
// touch the cache. opts must have passed ValidateAndSetDefaults.
func Render(ctx context.Context, opts Options, bank words.Bank, ladder fonts.Ladder) (*Result, error) {
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, opts.Seed, opts.Width, opts.Height)
	start := time.Now()

	res, err := render(ctx, opts, bank, ladder)

	hooks.OnRenderComplete(ctx, opts.Seed, time.Since(start), err)
	return res, err
}

func render(ctx context.Context, opts Options, bank words.Bank, ladder fonts.Ladder) (*Result, error) {
	renderStart := time.Now()
	rng := chart.NewRand(opts.Seed)
	s, err := chart.NewSession(rng, opts.Width, opts.Height, bank, ladder.Faces(), opts.SessionOptions())
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("palette", s.Scheme.LogValues()...)
	opts.Logger.Debug("origin", "x", s.Origin.X, "y", s.Origin.Y)

	stages := make(map[string]time.Duration, len(chart.Stages()))
	stageStart := time.Now()
	c := s.NewCanvas()
	err = s.RenderWithHook(c, func(stage string) {
		d := time.Since(stageStart)
		stages[stage] = d
		observability.Render().OnStageComplete(ctx, stage, d)
		stageStart = time.Now()
	})
	if err != nil {
		return nil, err
	}
	renderTime := time.Since(renderStart)

	encodeStart := time.Now()
	data, err := c.PNG()
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("drew shapes",
		"gridlines", s.Grid.Lines(),
		"parabolas", s.Shapes.Parabolas,
		"bends", s.Shapes.Bends,
		"lines", s.Shapes.Lines,
		"font_size", s.Face.Points())

	return &Result{
		Seed:     opts.Seed,
		Width:    opts.Width,
		Height:   opts.Height,
		Caption:  s.Caption,
		PNG:      data,
		Scheme:   s.Scheme,
		Shapes:   s.Shapes,
		FontSize: s.Face.Points(),
		Stats: Stats{
			RenderTime: renderTime,
			EncodeTime: time.Since(encodeStart),
			Stages:     stages,
		},
	}, nil
}
