package common

import (
	"sync"

	"github.com/toolcrib/vbwear/pkg/evaluator"
)

// FitnessCache memoises evaluation results by individual key. It lives for one
// search run and is safe for concurrent use.
type FitnessCache struct {
	lock  sync.RWMutex
	items map[string]evaluator.Result

	hits, misses int
}

// NewFitnessCache returns an empty cache.
func NewFitnessCache() *FitnessCache {
	return &FitnessCache{items: make(map[string]evaluator.Result)}
}

// Get returns the cached result for key.
func (c *FitnessCache) Get(key string) (evaluator.Result, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	r, ok := c.items[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return r, ok
}

// Put stores a result. The first result stored for a key wins.
func (c *FitnessCache) Put(key string, r evaluator.Result) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.items[key]; !ok {
		c.items[key] = r
	}
}

// Len returns the number of cached individuals.
func (c *FitnessCache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.items)
}

// Stats returns the hit and miss counters.
func (c *FitnessCache) Stats() (hits, misses int) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.hits, c.misses
}
