package cache

import (
	"context"
	"time"
)

// NullCache disables caching: every Get misses and writes are dropped.
// It backs --no-cache and backend = "none".
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)       { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                    { return nil }
func (NullCache) Prune(context.Context) (int, error)                      { return 0, nil }
func (NullCache) Close() error                                            { return nil }

var (
	_ Cache  = NullCache{}
	_ Pruner = NullCache{}
)
