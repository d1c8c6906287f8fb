package metricscache

import "sync/atomic"

// Counter is a monotonically-incrementing, concurrency-safe tally for
// a single MetricKey.
type Counter struct {
	value int64
}

// Inc adds val (default 1 via IncOne) to the counter.
func (c *Counter) Inc(val int64) {
	atomic.AddInt64(&c.value, val)
}

// IncOne adds one to the counter.
func (c *Counter) IncOne() {
	c.Inc(1)
}

// Count returns the counter's current value.
func (c *Counter) Count() int64 {
	return atomic.LoadInt64(&c.value)
}

// Dec subtracts val from the counter. Reporters use this, rather than
// Clear, to drain exactly the amount they observed: increments that
// race in after the observed read are preserved for the next drain
// instead of being discarded.
func (c *Counter) Dec(val int64) {
	atomic.AddInt64(&c.value, -val)
}

// Clear resets the counter to zero.
func (c *Counter) Clear() {
	atomic.StoreInt64(&c.value, 0)
}
