package audioio

import (
	"context"
	"sync"
)

type cacheKey struct {
	sourceID string
	rate     float64
}

// CachedLoader memoises another Loader by source and target rate. Failed
// loads are not cached. It is safe for concurrent use.
type CachedLoader struct {
	next Loader

	mu      sync.Mutex
	signals map[cacheKey]Signal
}

// NewCachedLoader wraps next.
func NewCachedLoader(next Loader) *CachedLoader {
	return &CachedLoader{next: next, signals: make(map[cacheKey]Signal)}
}

// Load returns a private copy of the cached signal, loading it on first use.
func (c *CachedLoader) Load(ctx context.Context, sourceID string, targetRate float64) (Signal, error) {
	key := cacheKey{sourceID: sourceID, rate: targetRate}

	c.mu.Lock()
	sig, ok := c.signals[key]
	c.mu.Unlock()

	if !ok {
		var err error
		sig, err = c.next.Load(ctx, sourceID, targetRate)
		if err != nil {
			return Signal{}, err
		}

		c.mu.Lock()
		c.signals[key] = sig
		c.mu.Unlock()
	}

	sig.Samples = append([]float64(nil), sig.Samples...)
	return sig, nil
}

// Len returns the number of cached signals.
func (c *CachedLoader) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.signals)
}
