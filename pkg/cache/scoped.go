package cache

import "github.com/matzehuels/roadnet/pkg/geo"

// ScopedKeyer wraps a Keyer with a prefix, giving each scope its own key
// namespace in a shared cache.
//
// Example usage:
//
//	// Graphs from a private OSM mirror never mix with public ones
//	keyer := NewScopedKeyer(NewDefaultKeyer(), cache.EndpointScope(baseURL))
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

// GraphKey generates a prefixed key for road graph caching.
func (k *ScopedKeyer) GraphKey(b geo.Bounds, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(b, opts)
}

// ResultKey generates a prefixed key for result caching.
func (k *ScopedKeyer) ResultKey(graphHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(graphHash, opts)
}

// EndpointScope returns a key prefix identifying an OSM API base URL.
func EndpointScope(baseURL string) string {
	return "osm:" + Hash([]byte(baseURL))[:12] + ":"
}
