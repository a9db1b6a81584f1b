package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/statgrapher/pkg/cache"
	"github.com/matzehuels/statgrapher/pkg/fonts"
	"github.com/matzehuels/statgrapher/pkg/observability"
	"github.com/matzehuels/statgrapher/pkg/words"
)

// Runner encapsulates render execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// Parsed fonts are shared across calls; faces, sessions and canvases are
// created per Execute, so multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	mu    sync.Mutex
	fonts map[string]*fonts.Font
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		fonts:  make(map[string]*fonts.Font),
	}
}

// Execute runs load → render → encode with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Load
	loadStart := time.Now()
	bank, err := r.loadWords(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	ladder, err := r.loadLadder(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	key := r.Keyer.RenderKey(cache.RenderKeyOpts{
		Seed:             opts.Seed,
		Width:            opts.Width,
		Height:           opts.Height,
		WordsHash:        bank.Hash(),
		Font:             opts.FontName(),
		FontSizes:        ladder.Sizes(),
		RandomBends:      opts.RandomBends,
		RerollCurveColor: opts.RerollCurveColor,
		GridPerSide:      opts.GridPerSide,
	})

	cacheable := opts.Seeded()
	if cacheable && !opts.Refresh {
		if res, ok := r.fromCache(ctx, key); ok {
			res.ID = uuid.NewString()
			res.Stats.LoadTime = loadTime
			opts.Logger.Info("chart from cache", "id", res.ID, "seed", res.Seed, "caption", res.Caption)
			return res, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stages 2 and 3: Render and encode
	res, err := Render(ctx, opts, bank, ladder)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.ID = uuid.NewString()
	res.Stats.LoadTime = loadTime

	if cacheable {
		r.store(ctx, opts, key, res)
	}

	opts.Logger.Info("rendered chart",
		"id", res.ID,
		"seed", res.Seed,
		"size", fmt.Sprintf("%dx%d", res.Width, res.Height),
		"caption", res.Caption,
		"duration", res.Stats.RenderTime+res.Stats.EncodeTime)

	return res, nil
}

// store caches res under key. Failures are logged, not returned.
func (r *Runner) store(ctx context.Context, opts Options, key string, res *Result) {
	data, err := json.Marshal(res)
	if err != nil {
		opts.Logger.Warn("cache encode failed", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err != nil {
		opts.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "render", len(data))
}

func (r *Runner) fromCache(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "render")
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil || len(res.PNG) == 0 {
		// Unreadable entry - recompute
		observability.Cache().OnCacheMiss(ctx, "render")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "render")
	res.CacheHit = true
	return &res, true
}

func (r *Runner) loadWords(opts Options) (words.Bank, error) {
	if opts.Words != nil {
		return *opts.Words, opts.Words.Validate()
	}
	return words.Load(opts.WordsPath)
}

// loadLadder builds fresh faces from a shared parsed font.
func (r *Runner) loadLadder(opts Options) (fonts.Ladder, error) {
	name := opts.FontName()

	r.mu.Lock()
	f, ok := r.fonts[name]
	r.mu.Unlock()

	if !ok {
		var err error
		f, err = fonts.Load(opts.Font)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.fonts[name] = f
		r.mu.Unlock()
	}
	return f.NewLadder(opts.FontSizes)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
