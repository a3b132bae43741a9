package cache

// ScopedKeyer prefixes every artifact key, separating projects or
// deployments that share one Redis database.
//
//	keyer := cache.NewScopedKeyer(nil, "shop:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns inner scoped under prefix. A nil inner uses
// [DefaultKeyer]; an empty prefix returns inner unchanged.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// Prefix returns the scope prepended to keys.
func (k *ScopedKeyer) Prefix() string { return k.prefix }

// ArtifactKey implements [Keyer].
func (k *ScopedKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(dotHash, opts)
}
