// Package cache provides byte-level caching for expensive pipeline stages.
//
// Compiling a quartad table is linear in the corpus, which for book-sized
// corpora dominates startup; scoring a single reference layout is cheap but
// repeated across invocations. Both stages cache their serialized results
// keyed by content hashes, so identical inputs always hit.
//
// Backends:
//   - file: entry-per-file cache under an XDG directory, for the CLI
//   - redis: shared cache for multi-instance server deployments
//   - null: caching disabled
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by helpers that treat a miss as an error.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the interface all backends implement. Get reports a miss with a
// false second return, not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys for the pipeline's stages.
type Keyer interface {
	// QuartadKey keys a compiled quartad table by the corpus content and
	// the reference layout whose position map drove compilation.
	QuartadKey(corpusHash, layoutHash string) string

	// ScoreKey keys a scoring result by corpus, candidate layout and
	// weight tuning.
	ScoreKey(corpusHash, layoutHash, weightsHash string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// QuartadKey implements Keyer.
func (k *DefaultKeyer) QuartadKey(corpusHash, layoutHash string) string {
	return hashKey("quartads", corpusHash, layoutHash)
}

// ScoreKey implements Keyer.
func (k *DefaultKeyer) ScoreKey(corpusHash, layoutHash, weightsHash string) string {
	return hashKey("score", corpusHash, layoutHash, weightsHash)
}

// ScopedKeyer wraps a Keyer with a prefix, isolating cache namespaces when
// several configurations share one backend.
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// QuartadKey generates a prefixed quartad-table key.
func (k *ScopedKeyer) QuartadKey(corpusHash, layoutHash string) string {
	return k.prefix + k.inner.QuartadKey(corpusHash, layoutHash)
}

// ScoreKey generates a prefixed score key.
func (k *ScopedKeyer) ScoreKey(corpusHash, layoutHash, weightsHash string) string {
	return k.prefix + k.inner.ScoreKey(corpusHash, layoutHash, weightsHash)
}
