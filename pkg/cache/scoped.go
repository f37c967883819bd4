package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several tenants or
// deployments can share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// CoarsenKey generates a prefixed key for cluster caching.
func (k *ScopedKeyer) CoarsenKey(graphHash string, opts CoarsenKeyOpts) string {
	return k.prefix + k.inner.CoarsenKey(graphHash, opts)
}

// PartitionKey generates a prefixed key for partition caching.
func (k *ScopedKeyer) PartitionKey(lineHash string, opts PartitionKeyOpts) string {
	return k.prefix + k.inner.PartitionKey(lineHash, opts)
}
