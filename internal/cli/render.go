package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/statgrapher/pkg/errors"
	"github.com/matzehuels/statgrapher/pkg/pipeline"
	"github.com/matzehuels/statgrapher/pkg/publish"
	"github.com/matzehuels/statgrapher/pkg/words"
)

// renderFlags holds the command-line flags for the render command that are
// not part of pipeline.Options.
type renderFlags struct {
	output  string // output file (base name when count > 1)
	count   int    // number of charts to render
	publish bool   // send charts to the configured sink
	sink    string // sink override: file, log, mongo
	noCache bool   // disable the render cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags renderFlags
		opts  pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render random statistics charts to PNG",
		Long: `Render random statistics charts to PNG.

Each chart gets a random background, axes through a random origin,
logarithmically spaced gridlines, a handful of lines, parabolas and bends,
and a caption composed from the word file.

A fixed --seed reproduces a chart exactly. With --count N the charts are
rendered in parallel, with seeds seed, seed+1, ... when a seed is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.ConfigPath)
			if err != nil {
				return err
			}
			merged := mergeRenderOptions(cmd, cfg.Render.options(), opts)
			if !cmd.Flags().Changed("output") && cfg.Render.Output != "" {
				flags.output = cfg.Render.Output
			}
			return c.runRender(cmd.Context(), cfg, merged, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", pipeline.DefaultOutput, "output PNG file")
	cmd.Flags().IntVarP(&flags.count, "count", "n", 1, "number of charts to render")
	cmd.Flags().BoolVar(&flags.publish, "publish", false, "publish rendered charts")
	cmd.Flags().StringVar(&flags.sink, "sink", "", "publish sink: log (default), file, mongo")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	cmd.Flags().StringVarP(&opts.WordsPath, "words", "w", "", "word file with *1*..*4* sections")
	cmd.Flags().IntVar(&opts.Width, "width", pipeline.DefaultWidth, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", pipeline.DefaultHeight, "canvas height in pixels")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().StringVar(&opts.Font, "font", "", "caption font file or system font name (default: embedded Go Regular)")
	cmd.Flags().Float64SliceVar(&opts.FontSizes, "font-sizes", nil, "caption font ladder in points (default 36,24,16,12)")
	cmd.Flags().BoolVar(&opts.RandomBends, "random-bends", false, "draw 0-2 bends instead of exactly 2")
	cmd.Flags().BoolVar(&opts.RerollCurveColor, "reroll-curve-color", false, "pick a new curve color for every shape")
	cmd.Flags().BoolVar(&opts.GridPerSide, "grid-per-side", false, "space gridlines independently on each side of the origin")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached charts")

	return cmd
}

// mergeRenderOptions overlays explicitly set flags on config values.
func mergeRenderOptions(cmd *cobra.Command, base, flags pipeline.Options) pipeline.Options {
	set := cmd.Flags().Changed
	if set("words") {
		base.WordsPath = flags.WordsPath
	}
	if set("width") {
		base.Width = flags.Width
	}
	if set("height") {
		base.Height = flags.Height
	}
	if set("seed") {
		base.Seed = flags.Seed
	}
	if set("font") {
		base.Font = flags.Font
	}
	if set("font-sizes") {
		base.FontSizes = flags.FontSizes
	}
	if set("random-bends") {
		base.RandomBends = flags.RandomBends
	}
	if set("reroll-curve-color") {
		base.RerollCurveColor = flags.RerollCurveColor
	}
	if set("grid-per-side") {
		base.GridPerSide = flags.GridPerSide
	}
	base.Refresh = flags.Refresh
	return base
}

// runRender renders flags.count charts and optionally publishes them.
func (c *CLI) runRender(ctx context.Context, cfg *Config, opts pipeline.Options, flags renderFlags) error {
	logger := loggerFromContext(ctx)

	if opts.WordsPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "no word file: pass --words or set render.words in the config")
	}
	if flags.count < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--count must be at least 1, got %d", flags.count)
	}
	if err := errors.ValidateOutputPath(flags.output); err != nil {
		return err
	}

	// Load the bank once and share it across the batch.
	bank, err := words.Load(opts.WordsPath)
	if err != nil {
		return err
	}
	opts.Words = &bank
	opts.Logger = logger

	var sink publish.Sink
	if flags.publish {
		if sink, err = newSink(ctx, cfg.Publish, flags.sink, c); err != nil {
			return err
		}
		defer sink.Close()
	}

	runner, err := c.newRunner(ctx, cfg.Cache, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering", flags.count)
	spinner.Start()

	results, err := renderBatch(ctx, runner, opts, flags, spinner.Step)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	for i, res := range results {
		printSuccess("Rendered %s", StyleHighlight.Render(batchPath(flags.output, i, flags.count)))
		printChart(res)

		if sink != nil {
			if err := sendResult(ctx, sink, res); err != nil {
				return err
			}
			printDetail("published to %s", sink.Name())
		}
	}
	if flags.count > 1 {
		prog.done(fmt.Sprintf("Rendered %d charts", flags.count))
	}
	return nil
}

// renderBatch renders and saves flags.count charts in parallel. Results are
// returned in batch order; step is called once per saved chart.
func renderBatch(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, flags renderFlags, step func()) ([]*pipeline.Result, error) {
	results := make([]*pipeline.Result, flags.count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range flags.count {
		g.Go(func() error {
			o := opts
			if opts.Seed != 0 {
				o.Seed = opts.Seed + uint64(i)
			}
			res, err := runner.Execute(gctx, o)
			if err != nil {
				return err
			}
			if err := res.Save(batchPath(flags.output, i, flags.count)); err != nil {
				return err
			}
			results[i] = res
			step()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// batchPath numbers output files when more than one chart is rendered:
// chart.png becomes chart_01.png, chart_02.png, ...
func batchPath(output string, i, count int) string {
	if count <= 1 {
		return output
	}
	ext := filepath.Ext(output)
	stem := strings.TrimSuffix(output, ext)
	width := len(strconv.Itoa(count))
	if width < 2 {
		width = 2
	}
	return fmt.Sprintf("%s_%0*d%s", stem, width, i+1, ext)
}

// newSink opens the publish sink named by override or the config.
func newSink(ctx context.Context, cfg PublishConfig, override string, c *CLI) (publish.Sink, error) {
	name := cfg.Sink
	if override != "" {
		name = override
	}

	switch name {
	case "", "log":
		return &publish.LogSink{Logger: c.Logger}, nil
	case "file":
		dir := cfg.Dir
		if dir == "" {
			dir = "published"
		}
		return publish.NewFileSink(dir)
	case "mongo":
		return publish.NewMongoSink(ctx, publish.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown publish sink %q (want log, file or mongo)", name)
	}
}

func sendResult(ctx context.Context, sink publish.Sink, res *pipeline.Result) error {
	post, err := publish.NewPost(res.ID, res.Seed, res.Caption, res.PNG)
	if err != nil {
		return err
	}
	return publish.Send(ctx, sink, post)
}
