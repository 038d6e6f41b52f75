package service

import (
	"sync"

	"crypto_converter/internal/domain"
)

// QuoteCache holds the most recent observed quote per pair. It is written
// concurrently by every stream worker and read by the flush scheduler and
// the conversion resolver. Conflicts resolve by last-write-wins on the
// observation timestamp, so update order across connections does not matter.
type QuoteCache struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote // keyed by pair symbol

	firstOnce   sync.Once
	firstUpdate chan struct{}
}

// NewQuoteCache creates an empty cache.
func NewQuoteCache() *QuoteCache {
	return &QuoteCache{
		quotes:      make(map[string]domain.Quote),
		firstUpdate: make(chan struct{}),
	}
}

// Update installs q as the pair's current value iff its observation time is
// not older than the current entry. Returns whether the update was applied.
// Late out-of-order quotes never regress the cache.
func (c *QuoteCache) Update(q domain.Quote) bool {
	if !q.Valid() {
		return false
	}

	key := q.Pair.Symbol()

	c.mu.Lock()
	cur, exists := c.quotes[key]
	if exists && q.ObservedAt.Before(cur.ObservedAt) {
		c.mu.Unlock()
		return false
	}
	c.quotes[key] = q
	c.mu.Unlock()

	c.firstOnce.Do(func() { close(c.firstUpdate) })
	return true
}

// Latest returns the current quote for the pair, if present.
func (c *QuoteCache) Latest(pair domain.Pair) (domain.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q, ok := c.quotes[pair.Symbol()]
	return q, ok
}

// Snapshot returns a point-in-time copy of all current entries. The copy is
// taken under the read lock, so it never observes a partially-written entry
// or a torn mix of update generations.
func (c *QuoteCache) Snapshot() []domain.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Quote, 0, len(c.quotes))
	for _, q := range c.quotes {
		out = append(out, q)
	}
	return out
}

// Len returns the number of pairs currently cached.
func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}

// FirstUpdate returns a channel closed once, on the first applied update of
// the process lifetime. The flush scheduler uses it for the initial flush.
func (c *QuoteCache) FirstUpdate() <-chan struct{} {
	return c.firstUpdate
}
