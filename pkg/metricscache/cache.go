// Package metricscache implements the per-worker counter table probes
// increment and the reporter that periodically drains it into the
// exchange fan-out bus.
package metricscache

import (
	"sync"

	"github.com/cloudforge-io/axon/pkg/types"
)

// Cache holds one Counter per observed MetricKey. The zero value is
// ready to use.
type Cache struct {
	mu       sync.Mutex
	counters map[types.MetricKey]*Counter
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{counters: make(map[types.MetricKey]*Counter)}
}

// Counter returns the Counter for metric, creating it on first use.
func (c *Cache) Counter(metric types.MetricKey) *Counter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counters == nil {
		c.counters = make(map[types.MetricKey]*Counter)
	}
	counter, exists := c.counters[metric]
	if !exists {
		counter = &Counter{}
		c.counters[metric] = counter
	}
	return counter
}

// Inc implements probe.Recorder: it increments the counter for metric
// by one.
func (c *Cache) Inc(metric types.MetricKey) {
	c.Counter(metric).IncOne()
}

// Clear removes every counter, discarding all accumulated state.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters = make(map[types.MetricKey]*Counter)
}

// Snapshot returns every tracked MetricKey and its Counter as of the
// call. The returned map aliases the live Counters; callers that intend
// to drain must call Counter.Dec themselves, not replace the cache.
func (c *Cache) Snapshot() map[types.MetricKey]*Counter {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[types.MetricKey]*Counter, len(c.counters))
	for k, v := range c.counters {
		out[k] = v
	}
	return out
}
