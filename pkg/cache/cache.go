// Package cache stores rendered charts so identical requests are not redrawn.
//
// A render is fully determined by its seed, canvas size, word bank, font and
// font ladder, so its encoded PNG and caption can be cached under a key
// derived from those inputs. Three backends implement [Cache]:
//
//   - [FileCache] for the CLI (~/.cache/statgrapher)
//   - [RedisCache] for the preview server when several instances share work
//   - [NullCache] when caching is disabled
//
// Keys are built by a [Keyer]; [ScopedKeyer] namespaces them for shared
// backends.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Pruner is implemented by backends that do not expire entries on their own.
type Pruner interface {
	// Prune removes expired entries and returns how many were removed.
	Prune(ctx context.Context) (int, error)
}

// TTLRender is how long a rendered chart stays cached.
const TTLRender = 7 * 24 * time.Hour

// RenderKeyOpts are the inputs that determine a rendered chart.
type RenderKeyOpts struct {
	Seed             uint64    `json:"seed"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	WordsHash        string    `json:"words_hash"`
	Font             string    `json:"font"`
	FontSizes        []float64 `json:"font_sizes"`
	RandomBends      bool      `json:"random_bends,omitempty"`
	RerollCurveColor bool      `json:"reroll_curve_color,omitempty"`
	GridPerSide      bool      `json:"grid_per_side,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	RenderKey(opts RenderKeyOpts) string
}

// DefaultKeyer hashes key options into "render:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey generates a key for a rendered chart.
func (DefaultKeyer) RenderKey(opts RenderKeyOpts) string {
	return hashKey("render", opts)
}
