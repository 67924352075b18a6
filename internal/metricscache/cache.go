// Package metricscache keeps the per-generation statistics of a genetic
// search. It is append-only and safe for concurrent readers while the
// optimizer goroutine writes.
package metricscache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/toolcrib/vbwear/pkg/core"
)

// GenerationCache is the in-memory ReadWriter.
type GenerationCache struct {
	mu          sync.RWMutex
	generations []core.GenerationStats
	updated     time.Time
	now         func() time.Time
}

var _ ReadWriter = (*GenerationCache)(nil)

// NewGenerationCache returns an empty cache.
func NewGenerationCache() *GenerationCache {
	return &GenerationCache{now: time.Now}
}

// OnGeneration records stats; it lets the cache observe a solver directly.
// Out-of-order generations are ignored.
func (c *GenerationCache) OnGeneration(_ context.Context, stats core.GenerationStats) {
	_ = c.Record(stats)
}

// Record appends stats.
func (c *GenerationCache) Record(stats core.GenerationStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.generations); n > 0 && stats.Generation <= c.generations[n-1].Generation {
		return fmt.Errorf("generation %d recorded after generation %d", stats.Generation, c.generations[n-1].Generation)
	}
	c.generations = append(c.generations, stats)
	c.updated = c.now()
	return nil
}

// Reset drops all generations.
func (c *GenerationCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations = nil
	c.updated = time.Time{}
}

// Generations returns a copy of the recorded generations.
func (c *GenerationCache) Generations() []core.GenerationStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.generations)
}

// Latest returns the most recent generation.
func (c *GenerationCache) Latest() (core.GenerationStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.generations) == 0 {
		return core.GenerationStats{}, false
	}
	return c.generations[len(c.generations)-1], true
}

// BestSoFar returns the earliest generation with the lowest best fitness.
func (c *GenerationCache) BestSoFar() (core.GenerationStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.generations) == 0 {
		return core.GenerationStats{}, false
	}
	best := c.generations[0]
	for _, g := range c.generations[1:] {
		if g.Best < best.Best {
			best = g
		}
	}
	return best, true
}

// History returns the best fitness per generation.
func (c *GenerationCache) History() core.History {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h := make(core.History, len(c.generations))
	for i, g := range c.generations {
		h[i] = g.Best
	}
	return h
}

// LastUpdateTime returns when the last generation was recorded.
func (c *GenerationCache) LastUpdateTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}
