package cli

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/statgrapher/pkg/errors"
	"github.com/matzehuels/statgrapher/pkg/pipeline"
)

// Config mirrors config.toml. Every field is optional; flags override it.
//
//	[render]
//	words = "~/words.txt"
//	width = 506
//	height = 284
//	font_sizes = [36, 24, 16, 12]
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[publish]
//	sink = "file"
//	dir = "~/charts"
type Config struct {
	Render  RenderConfig  `toml:"render"`
	Cache   CacheConfig   `toml:"cache"`
	Publish PublishConfig `toml:"publish"`
	Serve   ServeConfig   `toml:"serve"`
}

// RenderConfig holds defaults for chart rendering.
type RenderConfig struct {
	Words            string    `toml:"words"`
	Output           string    `toml:"output"`
	Width            int       `toml:"width"`
	Height           int       `toml:"height"`
	Seed             uint64    `toml:"seed"`
	Font             string    `toml:"font"`
	FontSizes        []float64 `toml:"font_sizes"`
	RandomBends      bool      `toml:"random_bends"`
	RerollCurveColor bool      `toml:"reroll_curve_color"`
	GridPerSide      bool      `toml:"grid_per_side"`
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // file (default), redis, none
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// PublishConfig selects where --publish sends charts.
type PublishConfig struct {
	Sink            string `toml:"sink"` // file, log, mongo
	Dir             string `toml:"dir"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// loadConfig reads the config file at path. With an empty path the default
// location is tried and a missing file yields an empty config; an explicit
// path must exist.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = configPath(); err != nil {
			return &Config{}, nil
		}
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	cfg.Render.Words = expandHome(cfg.Render.Words)
	cfg.Render.Output = expandHome(cfg.Render.Output)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	cfg.Publish.Dir = expandHome(cfg.Publish.Dir)
	return &cfg, nil
}

// options converts the render section into pipeline options.
func (r RenderConfig) options() pipeline.Options {
	return pipeline.Options{
		Width:            r.Width,
		Height:           r.Height,
		Seed:             r.Seed,
		WordsPath:        r.Words,
		Font:             r.Font,
		FontSizes:        r.FontSizes,
		RandomBends:      r.RandomBends,
		RerollCurveColor: r.RerollCurveColor,
		GridPerSide:      r.GridPerSide,
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
