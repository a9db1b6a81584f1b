package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/statgrapher/pkg/cache"
	"github.com/matzehuels/statgrapher/pkg/chart"
	"github.com/matzehuels/statgrapher/pkg/errors"
	"github.com/matzehuels/statgrapher/pkg/words"
)

func testBank(t *testing.T) *words.Bank {
	t.Helper()
	b, err := words.FromSlices(
		[]string{"Quarterly", "Annual", "Weekly"},
		[]string{"coffee", "sock", "printer"},
		[]string{"growth", "decline", "entropy"},
		[]string{"(adjusted)", "(estimated)"},
	)
	if err != nil {
		t.Fatalf("FromSlices: %v", err)
	}
	return &b
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{WordsPath: "words.txt"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %dx%d, want %dx%d", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}
	if opts.Seed == 0 {
		t.Error("zero seed should be replaced")
	}
	if len(opts.FontSizes) == 0 {
		t.Error("FontSizes should default to the reference ladder")
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if opts.FontName() == "" {
		t.Error("FontName should name the embedded font")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing words", Options{}, errors.ErrCodeInvalidConfig},
		{"too narrow", Options{WordsPath: "w", Width: 10, Height: 100}, errors.ErrCodeInvalidInput},
		{"too tall", Options{WordsPath: "w", Width: 100, Height: 100000}, errors.ErrCodeInvalidInput},
		{"bad font size", Options{WordsPath: "w", FontSizes: []float64{12, -1}}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestOptionsValidateIdempotent(t *testing.T) {
	opts := Options{WordsPath: "w"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	seed := opts.Seed
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Seed != seed {
		t.Errorf("seed changed on second call: %d -> %d", seed, opts.Seed)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{
		Words:  testBank(t),
		Seed:   42,
		Width:  320,
		Height: 200,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.ID == "" {
		t.Error("result should carry an ID")
	}
	if res.Caption == "" {
		t.Error("caption should not be empty")
	}
	if res.CacheHit {
		t.Error("null cache should never hit")
	}
	if res.Shapes.Total() == 0 {
		t.Error("at least one shape should be drawn")
	}

	img, err := png.Decode(bytes.NewReader(res.PNG))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("image size = %dx%d, want 320x200", b.Dx(), b.Dy())
	}

	for _, stage := range chart.Stages() {
		if _, ok := res.Stats.Stages[stage]; !ok {
			t.Errorf("missing timing for stage %q", stage)
		}
	}
}

func TestRunnerDeterministic(t *testing.T) {
	bank := testBank(t)
	run := func() *Result {
		r := NewRunner(nil, nil, nil)
		res, err := r.Execute(context.Background(), Options{Words: bank, Seed: 7})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		return res
	}

	a, b := run(), run()
	if a.Caption != b.Caption {
		t.Errorf("captions differ: %q vs %q", a.Caption, b.Caption)
	}
	if !bytes.Equal(a.PNG, b.PNG) {
		t.Error("same seed should produce identical PNG bytes")
	}
	if a.ID == b.ID {
		t.Error("IDs should be unique per render")
	}
}

func TestRunnerCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Words: testBank(t), Seed: 99}
	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheHit {
		t.Fatal("first render should miss")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheHit {
		t.Error("second render should hit the cache")
	}
	if second.Caption != first.Caption || !bytes.Equal(second.PNG, first.PNG) {
		t.Error("cached result differs from the original render")
	}

	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if third.CacheHit {
		t.Error("Refresh should bypass cache reads")
	}
}

func TestRunnerMissingWordFile(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{
		WordsPath: filepath.Join(t.TempDir(), "missing.txt"),
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRunnerUnknownFont(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{
		Words: testBank(t),
		Font:  "definitely-not-a-font-7f3a.ttf",
	})
	if !errors.Is(err, errors.ErrCodeFontNotFound) {
		t.Errorf("err = %v, want FONT_NOT_FOUND", err)
	}
}

func TestResultSave(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Words: testBank(t), Seed: 3})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "chart.png")
	if err := res.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, res.PNG) {
		t.Error("saved file differs from result PNG")
	}

	if err := res.Save(filepath.Join(t.TempDir(), "chart.jpg")); err == nil {
		t.Error("non-png path should be rejected")
	}
}

// countingCache wraps a cache and counts reads and writes.
type countingCache struct {
	cache.Cache
	gets, sets atomic.Int32
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets.Add(1)
	return c.Cache.Get(ctx, key)
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets.Add(1)
	return c.Cache.Set(ctx, key, data, ttl)
}

func TestRunnerUnseededSkipsCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := &countingCache{Cache: fc}
	r := NewRunner(c, nil, nil)
	bank := testBank(t)

	for range 5 {
		res, err := r.Execute(context.Background(), Options{Words: bank})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if res.CacheHit {
			t.Error("unseeded render should never come from the cache")
		}
	}
	if got := c.sets.Load(); got != 0 {
		t.Errorf("unseeded renders wrote %d cache entries, want 0", got)
	}
	if got := c.gets.Load(); got != 0 {
		t.Errorf("unseeded renders read the cache %d times, want 0", got)
	}

	if _, err := r.Execute(context.Background(), Options{Words: bank, Seed: 5}); err != nil {
		t.Fatal(err)
	}
	if got := c.sets.Load(); got != 1 {
		t.Errorf("seeded render wrote %d cache entries, want 1", got)
	}
}

func TestOptionsSeeded(t *testing.T) {
	random := Options{WordsPath: "w"}
	if err := random.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if random.Seeded() {
		t.Error("defaulted seed should not count as seeded")
	}

	fixed := Options{WordsPath: "w", Seed: 9}
	if err := fixed.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !fixed.Seeded() {
		t.Error("explicit seed should count as seeded")
	}
}
