package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend (for example a Redis instance) without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "statgrapher:preview:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RenderKey generates a prefixed key for a rendered chart.
func (k *ScopedKeyer) RenderKey(opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(opts)
}
