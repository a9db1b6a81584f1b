package cli

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/statgrapher/pkg/cache"
	"github.com/matzehuels/statgrapher/pkg/errors"
	"github.com/matzehuels/statgrapher/pkg/pipeline"
)

const testWords = `*1*
Quarterly
Annual
*2*
coffee
printer
*3*
growth
entropy
*4*
(adjusted)
`

func writeWords(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte(testWords), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testCLI() *CLI {
	return &CLI{Logger: log.NewWithOptions(io.Discard, log.Options{})}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestConfigPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	path, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg-config", appName, "config.toml"); path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := testCLI().RootCommand()
	for _, name := range []string{"render", "words", "serve", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestBatchPath(t *testing.T) {
	tests := []struct {
		output   string
		i, count int
		want     string
	}{
		{"random_graph.png", 0, 1, "random_graph.png"},
		{"random_graph.png", 0, 3, "random_graph_01.png"},
		{"out/chart.png", 9, 10, "out/chart_10.png"},
		{"chart.png", 4, 100, "chart_005.png"},
	}
	for _, tt := range tests {
		if got := batchPath(tt.output, tt.i, tt.count); got != tt.want {
			t.Errorf("batchPath(%q, %d, %d) = %q, want %q", tt.output, tt.i, tt.count, got, tt.want)
		}
	}
}

func TestMergeRenderOptions(t *testing.T) {
	c := testCLI()
	cmd := c.renderCommand()
	if err := cmd.ParseFlags([]string{"--width", "320", "--seed", "5"}); err != nil {
		t.Fatal(err)
	}

	base := pipeline.Options{WordsPath: "config.txt", Width: 400, Height: 300, Seed: 1}
	flags := pipeline.Options{Width: 320, Height: pipeline.DefaultHeight, Seed: 5}
	got := mergeRenderOptions(cmd, base, flags)

	if got.Width != 320 || got.Seed != 5 {
		t.Errorf("explicit flags should win: %+v", got)
	}
	if got.Height != 300 || got.WordsPath != "config.txt" {
		t.Errorf("unset flags should keep config values: %+v", got)
	}
}

func TestRunRenderBatch(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c := testCLI()
	out := filepath.Join(t.TempDir(), "chart.png")

	opts := pipeline.Options{WordsPath: writeWords(t), Width: 200, Height: 120, Seed: 11}
	flags := renderFlags{output: out, count: 3, noCache: true}
	ctx := withLogger(context.Background(), c.Logger)
	if err := c.runRender(ctx, &Config{}, opts, flags); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	for i := range 3 {
		data, err := os.ReadFile(batchPath(out, i, 3))
		if err != nil {
			t.Fatalf("chart %d: %v", i, err)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("chart %d: %v", i, err)
		}
		if cfg.Width != 200 || cfg.Height != 120 {
			t.Errorf("chart %d size = %dx%d", i, cfg.Width, cfg.Height)
		}
	}
}

func TestRunRenderPublishFile(t *testing.T) {
	c := testCLI()
	dir := t.TempDir()
	cfg := &Config{Publish: PublishConfig{Sink: "file", Dir: filepath.Join(dir, "published")}}

	opts := pipeline.Options{WordsPath: writeWords(t), Seed: 3}
	flags := renderFlags{output: filepath.Join(dir, "chart.png"), count: 1, publish: true, noCache: true}
	if err := c.runRender(context.Background(), cfg, opts, flags); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	entries, err := os.ReadDir(cfg.Publish.Dir)
	if err != nil {
		t.Fatal(err)
	}
	var pngs, txts int
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".png":
			pngs++
		case ".txt":
			txts++
		}
	}
	if pngs != 1 || txts != 1 {
		t.Errorf("published %d png and %d txt files, want 1 each", pngs, txts)
	}
}

func TestRunRenderErrors(t *testing.T) {
	c := testCLI()
	tests := []struct {
		name  string
		opts  pipeline.Options
		flags renderFlags
		code  errors.Code
	}{
		{"no words", pipeline.Options{}, renderFlags{output: "a.png", count: 1}, errors.ErrCodeInvalidConfig},
		{"zero count", pipeline.Options{WordsPath: "w.txt"}, renderFlags{output: "a.png"}, errors.ErrCodeInvalidInput},
		{"non-png output", pipeline.Options{WordsPath: "w.txt"}, renderFlags{output: "a.jpg", count: 1}, errors.ErrCodeInvalidFormat},
		{"empty output", pipeline.Options{WordsPath: "w.txt"}, renderFlags{output: "", count: 1}, errors.ErrCodeInvalidPath},
		{"missing words", pipeline.Options{WordsPath: "/nonexistent/w.txt"}, renderFlags{output: "a.png", count: 1}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.runRender(context.Background(), &Config{}, tt.opts, tt.flags)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestNewSinkUnknown(t *testing.T) {
	_, err := newSink(context.Background(), PublishConfig{}, "carrier-pigeon", testCLI())
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestRunWords(t *testing.T) {
	var buf bytes.Buffer
	if err := runWords(&buf, writeWords(t), 3, 42); err != nil {
		t.Fatalf("runWords: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// Status, four section counts, hash, samples title, three samples.
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "is valid") {
		t.Errorf("first line = %q, want validity status", lines[0])
	}
	for i, n := range []int{2, 2, 2, 1} {
		l := lines[1+i]
		if !strings.Contains(l, fmt.Sprintf("section %d", i+1)) || !strings.HasSuffix(strings.TrimSpace(l), strconv.Itoa(n)) {
			t.Errorf("section line %q, want section %d with %d entries", l, i+1, n)
		}
	}
	if !strings.Contains(lines[6], "Samples") {
		t.Errorf("samples title = %q", lines[6])
	}
	for _, l := range lines[7:] {
		if !strings.HasPrefix(strings.TrimSpace(l), "Quarterly") && !strings.HasPrefix(strings.TrimSpace(l), "Annual") {
			t.Errorf("sample %q should start with a category 1 word", l)
		}
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "ab")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"one.json", "two.json"} {
		if err := os.WriteFile(filepath.Join(sub, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	n, err := clearDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("cleared %d, want 2", n)
	}
	if _, err := os.Stat(sub); !os.IsNotExist(err) {
		t.Error("empty subdirectory should be removed")
	}

	if n, err := clearDir(filepath.Join(dir, "missing")); err != nil || n != 0 {
		t.Errorf("missing dir: n=%d err=%v", n, err)
	}
}

func TestPruneDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "fresh", []byte("a"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "stale", []byte("b"), -time.Second); err != nil {
		t.Fatal(err)
	}

	n, err := pruneDir(ctx, dir)
	if err != nil || n != 1 {
		t.Errorf("pruneDir = %d, %v, want 1 removed", n, err)
	}
	if _, hit, _ := fc.Get(ctx, "fresh"); !hit {
		t.Error("unexpired entry should survive --expired")
	}

	if n, err := pruneDir(ctx, filepath.Join(dir, "missing")); err != nil || n != 0 {
		t.Errorf("missing dir: n=%d err=%v", n, err)
	}
}

func TestPingFileCache(t *testing.T) {
	c := testCLI()
	if err := c.pingCache(context.Background(), CacheConfig{Dir: t.TempDir()}); err != nil {
		t.Errorf("pingCache: %v", err)
	}
}

func TestNewCacheUnknownBackend(t *testing.T) {
	_, _, err := testCLI().newCache(context.Background(), CacheConfig{Backend: "memcached"}, false)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c, keyer, err := testCLI().newCache(context.Background(), CacheConfig{Backend: backendRedis}, true)
	if err != nil || c == nil || keyer != nil {
		t.Errorf("--no-cache should yield a null cache without keyer: %v %v %v", c, keyer, err)
	}
}
